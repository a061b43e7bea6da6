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
	"io"

	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/falcosecurity/wdkbuild/pkg/wdkbuilder"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewConfigureCmd creates the `wdkbuild configure` command.
func NewConfigureCmd(rootCommand *RootCmd, configOpts *ConfigOptions, rootOpts *RootOptions) *cobra.Command {
	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Print the build directives of a library or of a driver binary.",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			c.Help()
		},
	}
	configureCmd.AddCommand(&cobra.Command{
		Use:   "library",
		Short: "Print the search paths and libraries needed to link against the kit.",
		Args:  cobra.NoArgs,
		RunE:  runBuilder(rootCommand, configOpts, rootOpts, (*wdkbuilder.Builder).ConfigureLibraryBuild),
	})
	configureCmd.AddCommand(&cobra.Command{
		Use:   "binary",
		Short: "Print the linker arguments of a driver binary.",
		Args:  cobra.NoArgs,
		RunE:  runBuilder(rootCommand, configOpts, rootOpts, (*wdkbuilder.Builder).ConfigureBinaryBuild),
	})
	return configureCmd
}

// NewExportCmd creates the `wdkbuild export` command.
func NewExportCmd(rootCommand *RootCmd, configOpts *ConfigOptions, rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Publish the configuration to the dependents of the package being built.",
		Long: `Publish the configuration to the dependents of the package being built.

The package must declare a links value in its manifest: dependents read the
configuration from the DEP_<LINKS>_WDK_CONFIG environment variable.`,
		Args: cobra.NoArgs,
		RunE: runBuilder(rootCommand, configOpts, rootOpts, (*wdkbuilder.Builder).ExportConfig),
	}
}

func runBuilder(rootCommand *RootCmd, configOpts *ConfigOptions, rootOpts *RootOptions, run func(*wdkbuilder.Builder, wdk.Config) error) func(c *cobra.Command, args []string) error {
	return func(c *cobra.Command, args []string) error {
		config, err := rootCommand.config(rootOpts)
		if err != nil {
			return err
		}
		out := c.OutOrStdout()
		if configOpts.DryRun {
			logger.WithField("command", c.CommandPath()).Info("dry run, not printing build directives")
			out = io.Discard
		}
		return run(rootCommand.builder(out), config)
	}
}
