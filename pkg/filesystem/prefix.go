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

package filesystem

import (
	"fmt"
	"strings"
)

const (
	extendedLengthPathPrefix    = `\\?\`
	extendedLengthUNCPathPrefix = `\\?\UNC\`
)

// ExtendedPathPrefixError is returned when nothing is left of a path once
// its extended-length prefix is removed.
type ExtendedPathPrefixError struct {
	Path string
}

func (e *ExtendedPathPrefixError) Error() string {
	return fmt.Sprintf("cannot strip extended-length path prefix from %q", e.Path)
}

// StripExtendedLengthPathPrefix turns `\\?\C:\x` into `C:\x` and
// `\\?\UNC\server\share` into `\\server\share`. Paths without the prefix are
// returned unchanged. Compilers and linkers do not accept the prefixed form.
func StripExtendedLengthPathPrefix(p string) (string, error) {
	var res string
	switch {
	case strings.HasPrefix(p, extendedLengthUNCPathPrefix):
		rest := strings.TrimPrefix(p, extendedLengthUNCPathPrefix)
		if rest == "" {
			return "", &ExtendedPathPrefixError{Path: p}
		}
		res = `\\` + rest
	case strings.HasPrefix(p, extendedLengthPathPrefix):
		res = strings.TrimPrefix(p, extendedLengthPathPrefix)
		if res == "" {
			return "", &ExtendedPathPrefixError{Path: p}
		}
	default:
		res = p
	}
	return res, nil
}

// CanonicalizeAndStrip canonicalizes name on fs and strips the
// extended-length prefix from the result.
func CanonicalizeAndStrip(fs Filesystem, name string) (string, error) {
	p, err := fs.Canonicalize(name)
	if err != nil {
		return "", err
	}
	return StripExtendedLengthPathPrefix(p)
}
