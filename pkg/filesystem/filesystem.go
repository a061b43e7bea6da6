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
)

// Filesystem is the read-only view of the installed kit the path
// resolution needs.
type Filesystem interface {
	// IsDir reports whether name exists and is a directory.
	IsDir(name string) bool
	// SubDirs lists the names of the directories directly under name.
	SubDirs(name string) ([]string, error)
	// Canonicalize returns the absolute path of name with links resolved.
	Canonicalize(name string) (string, error)
}

func Factory(name string, options map[string]string) (Filesystem, error) {
	switch name {
	case LocalFilesystemStr:
		return NewLocal(options), nil
	case MemoryFilesystemStr:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("filesystem not implemented: %s", name)
}
