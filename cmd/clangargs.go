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
	"github.com/falcosecurity/wdkbuild/pkg/bindgen"
	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/spf13/cobra"
)

// NewClangArgsCmd creates the `wdkbuild clang-args` command.
func NewClangArgsCmd(rootCommand *RootCmd, rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clang-args",
		Short: "Print the clang arguments needed to generate bindings for the kit headers.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			config, err := rootCommand.config(rootOpts)
			if err != nil {
				return err
			}
			paths, err := wdk.NewLayout(rootCommand.fs).IncludePaths(config)
			if err != nil {
				return err
			}
			return printLines(c.OutOrStdout(), bindgen.ClangArgs(paths, config))
		},
	}
}
