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

package cargo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
)

// Printer writes directives to the orchestrator, one per line.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes the directives in order and stops at the first write error.
func (p *Printer) Print(directives ...Directive) error {
	for _, d := range directives {
		if _, err := fmt.Fprintln(p.w, d.String()); err != nil {
			return fmt.Errorf("error writing build directive %q: %w", d.Key, err)
		}
	}
	return nil
}

// ReadAll parses every directive line from r. Lines not carrying a
// directive are skipped, as the orchestrator does.
func ReadAll(r io.Reader) ([]Directive, error) {
	var res []Directive
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, directivePrefix) {
			continue
		}
		d, err := Parse(line)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Forward stores the metadata directives of a package declaring links into
// env, the same way the orchestrator exposes them to dependents.
func Forward(env buildenv.Provider, links string, directives []Directive) error {
	for _, d := range directives {
		if !d.IsMetadata() {
			continue
		}
		if err := env.Set(DependencyEnvKey(links, d.Key.String()), d.Value); err != nil {
			return err
		}
	}
	return nil
}
