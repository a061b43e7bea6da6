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

	"github.com/falcosecurity/wdkbuild/pkg/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the `wdkbuild version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wdkbuild version.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if v, err := version.SemVer(); err == nil {
				fmt.Fprintf(out, "version: %s\n", v)
			} else {
				fmt.Fprintln(out, "version: dev")
			}
			fmt.Fprintf(out, "commit: %s\n", version.GitCommit())
			if t := version.Time(); t != nil {
				fmt.Fprintf(out, "built: %s\n", t.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}
