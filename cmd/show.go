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
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/falcosecurity/wdkbuild/validate"
	"github.com/go-playground/validator/v10"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type showOptions struct {
	Output    string `validate:"oneof=table json yaml" name:"output"`
	FromLinks string `validate:"omitempty,linkname" name:"from-links"`
	FromEnv   bool
}

// configView is the human facing form of a configuration.
type configView struct {
	ContentRoot      string `yaml:"content_root"`
	Driver           string `yaml:"driver"`
	FrameworkVersion string `yaml:"framework_version,omitempty"`
	Architecture     string `yaml:"architecture"`
	Source           string `yaml:"source"`
}

func newConfigView(c wdk.Config, source string) configView {
	v := configView{
		ContentRoot:  c.ContentRoot,
		Driver:       c.Driver.DriverType().String(),
		Architecture: string(c.Architecture),
		Source:       source,
	}
	switch d := c.Driver.(type) {
	case wdk.KMDFConfig:
		v.FrameworkVersion = fmt.Sprintf("%d.%d", d.VersionMajor, d.VersionMinor)
	case wdk.UMDFConfig:
		v.FrameworkVersion = fmt.Sprintf("%d.%d", d.VersionMajor, d.VersionMinor)
	}
	return v
}

// NewShowCmd creates the `wdkbuild show` command.
func NewShowCmd(rootCommand *RootCmd, rootOpts *RootOptions) *cobra.Command {
	opts := &showOptions{Output: outputTable}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a configuration built from flags or published by a dependency.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := validate.V.Struct(opts); err != nil {
				var errs validator.ValidationErrors
				if errors.As(err, &errs) {
					return errors.New(errs[0].Translate(validate.T))
				}
				return err
			}

			var (
				config wdk.Config
				source string
				err    error
			)
			switch {
			case opts.FromLinks != "":
				source = wdk.DependencyEnvKey(opts.FromLinks)
				config, err = wdk.FromLinkName(rootCommand.env, opts.FromLinks)
			case opts.FromEnv:
				source = "dependencies"
				config, err = wdk.FromEnvAuto(rootCommand.env)
			default:
				source = "options"
				config, err = rootCommand.config(rootOpts)
			}
			if err != nil {
				return err
			}
			return printConfig(c.OutOrStdout(), opts.Output, config, source)
		},
	}
	flags := showCmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", opts.Output, "output format (table, json, yaml)")
	flags.StringVar(&opts.FromLinks, "from-links", opts.FromLinks, "read the configuration published by the dependency with this links value")
	flags.BoolVar(&opts.FromEnv, "from-env", opts.FromEnv, "read the configuration published by the wdk and wdk-sys dependencies")
	showCmd.MarkFlagsMutuallyExclusive("from-links", "from-env")
	showCmd.RegisterFlagCompletionFunc("output", func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{outputTable, outputJSON, outputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	return showCmd
}

func printConfig(w io.Writer, format string, c wdk.Config, source string) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newConfigView(c, source)); err != nil {
			return err
		}
		return enc.Close()
	}

	v := newConfigView(c, source)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.Append([]string{"content root", v.ContentRoot})
	table.Append([]string{"driver", v.Driver})
	if v.FrameworkVersion != "" {
		table.Append([]string{"framework version", v.FrameworkVersion})
	}
	table.Append([]string{"architecture", v.Architecture})
	table.Append([]string{"source", v.Source})
	table.Render()
	return nil
}
