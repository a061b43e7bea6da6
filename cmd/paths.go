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

	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/spf13/cobra"
)

// NewIncludePathsCmd creates the `wdkbuild include-paths` command.
func NewIncludePathsCmd(rootCommand *RootCmd, rootOpts *RootOptions) *cobra.Command {
	return newPathsCmd(rootCommand, rootOpts, "include-paths",
		"Print the header search paths of the configuration, in search order.",
		(*wdk.Layout).IncludePaths)
}

// NewLibraryPathsCmd creates the `wdkbuild library-paths` command.
func NewLibraryPathsCmd(rootCommand *RootCmd, rootOpts *RootOptions) *cobra.Command {
	return newPathsCmd(rootCommand, rootOpts, "library-paths",
		"Print the library search paths of the configuration, in search order.",
		(*wdk.Layout).LibraryPaths)
}

func newPathsCmd(rootCommand *RootCmd, rootOpts *RootOptions, use, short string, resolve func(*wdk.Layout, wdk.Config) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			config, err := rootCommand.config(rootOpts)
			if err != nil {
				return err
			}
			paths, err := resolve(wdk.NewLayout(rootCommand.fs), config)
			if err != nil {
				return err
			}
			return printLines(c.OutOrStdout(), paths)
		},
	}
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
