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

// Package cargo implements the line-oriented protocol build scripts use to
// talk to the build orchestrator: one `cargo:<key>[=<value>]` per line.
package cargo

import (
	"fmt"
	"strings"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
)

const directivePrefix = "cargo:"

// Key is a directive key.
type Key string

func (k Key) String() string {
	return string(k)
}

// Keys understood by the orchestrator. Any other key is metadata that gets
// forwarded to dependents through the DEP_<LINKS>_<KEY> variables.
const (
	KeyLinkSearch    Key = "rustc-link-search"
	KeyLinkLib       Key = "rustc-link-lib"
	KeyCdylibLinkArg Key = "rustc-cdylib-link-arg"
	KeyLinkArg       Key = "rustc-link-arg"
	KeyRerunIfEnv    Key = "rerun-if-env-changed"
	KeyWarning       Key = "warning"
)

var reservedKeys = map[Key]struct{}{
	KeyLinkSearch:      {},
	KeyLinkLib:         {},
	KeyCdylibLinkArg:   {},
	KeyLinkArg:         {},
	KeyRerunIfEnv:      {},
	KeyWarning:         {},
	"rustc-cfg":        {},
	"rustc-env":        {},
	"rustc-flags":      {},
	"rerun-if-changed": {},
}

// Directive is a single instruction for the build orchestrator.
type Directive struct {
	Key   Key
	Value string
}

// LinkSearch adds path to the linker search path.
func LinkSearch(path string) Directive {
	return Directive{Key: KeyLinkSearch, Value: path}
}

// LinkLib links the named library.
func LinkLib(name string) Directive {
	return Directive{Key: KeyLinkLib, Value: name}
}

// CdylibLinkArg passes arg straight to the linker for cdylib targets.
func CdylibLinkArg(arg string) Directive {
	return Directive{Key: KeyCdylibLinkArg, Value: arg}
}

// Metadata publishes key=value to the direct dependents of the package.
func Metadata(key, value string) Directive {
	return Directive{Key: Key(key), Value: value}
}

// IsMetadata reports whether the directive is forwarded to dependents.
func (d Directive) IsMetadata() bool {
	_, ok := reservedKeys[d.Key]
	return !ok
}

func (d Directive) String() string {
	if d.Value == "" {
		return directivePrefix + d.Key.String()
	}
	return fmt.Sprintf("%s%s=%s", directivePrefix, d.Key, d.Value)
}

// Parse reads a directive back from its line form.
func Parse(line string) (Directive, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, directivePrefix) {
		return Directive{}, fmt.Errorf("not a build directive: %q", line)
	}
	rest := strings.TrimPrefix(line, directivePrefix)
	key, value, _ := strings.Cut(rest, "=")
	if key == "" {
		return Directive{}, fmt.Errorf("build directive without key: %q", line)
	}
	return Directive{Key: Key(key), Value: value}, nil
}

// DependencyEnvKey returns the variable a dependent sees for metadata key
// published by a package declaring the given links value.
func DependencyEnvKey(links, key string) string {
	return buildenv.DependencyEnvPrefix + envSegment(links) + "_" + envSegment(key)
}

func envSegment(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "-", "_")
}
