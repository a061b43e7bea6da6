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

// Package buildenv abstracts the environment variables a build script
// receives from the build orchestrator.
package buildenv

import (
	"os"
	"sort"
	"sync"
)

// Well known variables set by the orchestrator for build scripts.
const (
	ManifestLinksEnv    = "CARGO_MANIFEST_LINKS"
	TargetArchEnv       = "CARGO_CFG_TARGET_ARCH"
	ProfileEnv          = "PROFILE"
	ContentRootEnv      = "WDKContentRoot"
	DependencyEnvPrefix = "DEP_"
)

// Provider gives access to a key-value environment.
type Provider interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
}

// OS is the Provider backed by the process environment.
type OS struct{}

// NewOS returns the process environment provider.
func NewOS() *OS {
	return &OS{}
}

func (OS) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (OS) Set(key, value string) error {
	return os.Setenv(key, value)
}

// Map is an in-memory Provider. It is safe for concurrent use.
type Map struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMap returns a Map seeded with a copy of vars.
func NewMap(vars map[string]string) *Map {
	m := &Map{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

func (m *Map) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[key]
	return v, ok
}

func (m *Map) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vars == nil {
		m.vars = map[string]string{}
	}
	m.vars[key] = value
	return nil
}

// Unset removes key from the map.
func (m *Map) Unset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
}

// Keys returns the sorted list of keys currently set.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.vars))
	for k := range m.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
