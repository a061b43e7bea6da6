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
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

const (
	LocalFilesystemStr  = "local"
	MemoryFilesystemStr = "memory"
)

// Local is a Filesystem over an afero.Fs.
type Local struct {
	fs           afero.Fs
	basePath     string
	resolveLinks bool
}

// NewLocal returns the host filesystem. The optional "basepath" option
// makes relative names resolve against it instead of the working directory.
func NewLocal(options map[string]string) *Local {
	return &Local{
		fs:           afero.NewOsFs(),
		basePath:     options["basepath"],
		resolveLinks: true,
	}
}

// NewMemory returns an empty in-memory filesystem. Use Fs to populate it.
func NewMemory() *Local {
	return NewFromAfero(afero.NewMemMapFs())
}

// NewFromAfero wraps an existing afero.Fs. Links are not resolved.
func NewFromAfero(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

// Fs returns the underlying afero.Fs.
func (f *Local) Fs() afero.Fs {
	return f.fs
}

func (f *Local) path(name string) string {
	if f.basePath != "" && !filepath.IsAbs(name) {
		return filepath.Join(f.basePath, name)
	}
	return name
}

func (f *Local) IsDir(name string) bool {
	ok, err := afero.IsDir(f.fs, f.path(name))
	return err == nil && ok
}

func (f *Local) SubDirs(name string) ([]string, error) {
	infos, err := afero.ReadDir(f.fs, f.path(name))
	if err != nil {
		return nil, err
	}
	res := []string{}
	for _, info := range infos {
		if info.IsDir() {
			res = append(res, info.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

func (f *Local) Canonicalize(name string) (string, error) {
	p := f.path(name)
	if _, err := f.fs.Stat(p); err != nil {
		return "", fmt.Errorf("error canonicalizing %s: %w", name, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("error canonicalizing %s: %w", name, err)
	}
	if !f.resolveLinks {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("error canonicalizing %s: %w", name, err)
	}
	return resolved, nil
}
