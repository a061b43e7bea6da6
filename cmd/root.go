// SPDX-License-Identifier: Apache-2.0
/*
Copyright (C) 2023 The Falco Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"io"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/cargo"
	"github.com/falcosecurity/wdkbuild/pkg/filesystem"
	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/falcosecurity/wdkbuild/pkg/wdkbuilder"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:            true,
		DisableLevelTruncation: false,
		DisableTimestamp:       true,
	})
}

// RootCmd wraps the main cobra.Command.
type RootCmd struct {
	c *cobra.Command
	v *viper.Viper

	// env is what build scripts receive from the orchestrator.
	env buildenv.Provider
	fs  filesystem.Filesystem
}

// NewRootCmd instantiates the root command.
func NewRootCmd() *RootCmd {
	configOpts := NewConfigOptions()
	rootOpts := NewRootOptions()
	rootCmd := &cobra.Command{
		Use:   "wdkbuild",
		Short: "A command line tool to configure Windows driver builds.",
		Long: `wdkbuild resolves the Windows Driver Kit configuration of a driver build
and prints the directives the build orchestrator needs to compile and link it.

Meant to be run from a build script: directives go to standard output, logs
go to standard error.`,
		DisableFlagsInUseLine: true,
		DisableAutoGenTag:     true,
		SilenceErrors:         true,
		SilenceUsage:          true,
		Args: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return nil
			}
			return fmt.Errorf("invalid argument %q for %q", args[0], c.CommandPath())
		},
		Run: func(c *cobra.Command, args []string) {
			// Fallback to help
			c.Help()
		},
	}
	ret := &RootCmd{
		c:   rootCmd,
		v:   viper.New(),
		env: buildenv.NewOS(),
	}
	fs, err := filesystem.Factory(filesystem.LocalFilesystemStr, nil)
	if err != nil {
		logger.WithError(err).Fatal("error creating the filesystem")
	}
	ret.fs = fs

	rootCmd.PersistentPreRunE = persistentValidateFunc(ret, configOpts, rootOpts)

	flags := rootCmd.PersistentFlags()
	configOpts.AddFlags(flags)
	rootOpts.AddFlags(flags)

	rootCmd.RegisterFlagCompletionFunc("driver", func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		res := make([]string, 0, len(wdk.DriverTypes))
		for _, t := range wdk.DriverTypes {
			res = append(res, t.String())
		}
		return res, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("architecture", func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		res := make([]string, 0, len(wdk.CPUArchitectures))
		for _, a := range wdk.CPUArchitectures {
			res = append(res, string(a))
		}
		return res, cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.RegisterFlagCompletionFunc("loglevel", func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		res := make([]string, 0, len(logger.AllLevels))
		for _, l := range logger.AllLevels {
			res = append(res, l.String())
		}
		return res, cobra.ShellCompDirectiveNoFileComp
	})

	// Subcommands
	rootCmd.AddCommand(NewIncludePathsCmd(ret, rootOpts))
	rootCmd.AddCommand(NewLibraryPathsCmd(ret, rootOpts))
	rootCmd.AddCommand(NewConfigureCmd(ret, configOpts, rootOpts))
	rootCmd.AddCommand(NewExportCmd(ret, configOpts, rootOpts))
	rootCmd.AddCommand(NewShowCmd(ret, rootOpts))
	rootCmd.AddCommand(NewClangArgsCmd(ret, rootOpts))
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewCompletionCmd())

	return ret
}

func persistentValidateFunc(rootCommand *RootCmd, configOpts *ConfigOptions, rootOpts *RootOptions) func(c *cobra.Command, args []string) error {
	return func(c *cobra.Command, args []string) error {
		logger.SetOutput(c.ErrOrStderr())

		// Merge environment variables or config file values into the options
		v := rootCommand.v
		if err := v.BindPFlags(c.Flags()); err != nil {
			return err
		}
		if configErr := configOpts.Init(v); configErr {
			return fmt.Errorf("exiting for validation errors")
		}
		if err := rootOpts.Merge(v); err != nil {
			return err
		}

		// Do not block root, help, and completion commands to exec disregarding the persistent flags validity
		if !skipValidation(c) {
			if errs := rootOpts.Validate(); errs != nil {
				for _, err := range errs {
					logger.WithError(err).Error("error validating build options")
				}
				return fmt.Errorf("exiting for validation errors")
			}
			rootOpts.Log()
		}
		return nil
	}
}

func skipValidation(c *cobra.Command) bool {
	if c.Root() == c {
		return true
	}
	switch c.Name() {
	case "help", "__complete", "__completeNoDesc", "version":
		return true
	}
	return c.Parent() != nil && c.Parent().Name() == "completion" || c.Name() == "completion"
}

// config resolves the configuration the options describe.
func (r *RootCmd) config(rootOpts *RootOptions) (wdk.Config, error) {
	return rootOpts.ToConfig(r.env, r.fs)
}

// builder returns a builder printing the directives to w.
func (r *RootCmd) builder(w io.Writer) *wdkbuilder.Builder {
	return wdkbuilder.NewBuilder(wdk.NewLayout(r.fs), r.env, cargo.NewPrinter(w))
}

// Command returns the underlying cobra.Command.
func (r *RootCmd) Command() *cobra.Command {
	return r.c
}

// SetArgs proxies the arguments to the underlying cobra.Command.
func (r *RootCmd) SetArgs(args []string) {
	r.c.SetArgs(args)
}

// SetOutput sets the destination for usage and error messages.
func (r *RootCmd) SetOutput(w io.Writer) {
	r.c.SetOut(w)
	r.c.SetErr(w)
}

// SetOut sets the destination of the command results.
func (r *RootCmd) SetOut(w io.Writer) {
	r.c.SetOut(w)
}

// SetErr sets the destination of logs and error messages.
func (r *RootCmd) SetErr(w io.Writer) {
	r.c.SetErr(w)
}

// Execute proxies the cobra.Command execution.
func (r *RootCmd) Execute() error {
	return r.c.Execute()
}

// Start creates the root command and runs it.
func Start() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		logger.WithError(err).Fatal("error executing wdkbuild")
	}
}
