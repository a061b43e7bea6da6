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

package wdk

import (
	"encoding/json"
	"fmt"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/cargo"
	logger "github.com/sirupsen/logrus"
)

// ConfigKey is the metadata key configurations are published under.
const ConfigKey = "wdk_config"

// Links values of the two packages FromEnvAuto looks for.
const (
	WDKLinks    = "wdk"
	WDKSysLinks = "wdk-sys"
)

// DependencyEnvKey returns the variable holding the configuration published
// by the package declaring links.
func DependencyEnvKey(links string) string {
	return cargo.DependencyEnvKey(links, ConfigKey)
}

// ExportConfig publishes c to the dependents of the package being built.
// The package must declare a links value, otherwise nothing is printed.
func ExportConfig(env buildenv.Provider, p *cargo.Printer, c Config) error {
	links, ok := env.Lookup(buildenv.ManifestLinksEnv)
	if !ok {
		return ErrMissingLinksValue
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}
	logger.WithFields(logger.Fields{
		"links": links,
		"key":   DependencyEnvKey(links),
	}).Debug("exporting config")
	return p.Print(cargo.Metadata(ConfigKey, string(data)))
}

// FromLinkName reads the configuration published by the dependency
// declaring links.
func FromLinkName(env buildenv.Provider, links string) (Config, error) {
	s := readSource(env, DependencyEnvKey(links))
	switch s.state {
	case sourceAbsent:
		return Config{}, &EnvVarError{Key: s.key}
	case sourceInvalid:
		return Config{}, s.err
	}
	return s.config, nil
}

// FromEnvAuto reads the configurations published by the wdk and wdk-sys
// packages. When both are present they must be equal.
func FromEnvAuto(env buildenv.Provider) (Config, error) {
	s1 := readSource(env, DependencyEnvKey(WDKLinks))
	s2 := readSource(env, DependencyEnvKey(WDKSysLinks))

	// A malformed source is an error even when the other one is fine.
	for _, s := range []source{s1, s2} {
		if s.state == sourceInvalid {
			return Config{}, s.err
		}
	}

	switch {
	case s1.state == sourceValid && s2.state == sourceValid:
		if s1.config != s2.config {
			return Config{}, &ConfigMismatchError{
				Config1:       s1.config,
				Config1Source: s1.key,
				Config2:       s2.config,
				Config2Source: s2.key,
			}
		}
		return s1.config, nil
	case s1.state == sourceValid:
		return s1.config, nil
	case s2.state == sourceValid:
		return s2.config, nil
	}
	return Config{}, ErrConfigNotFound
}

type sourceState int

const (
	sourceAbsent sourceState = iota
	sourceValid
	sourceInvalid
)

type source struct {
	key    string
	state  sourceState
	config Config
	err    error
}

func readSource(env buildenv.Provider, key string) source {
	s := source{key: key}
	raw, ok := env.Lookup(key)
	if !ok {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s.config); err != nil {
		s.state = sourceInvalid
		s.err = &DeserializeError{Source: key, Err: err}
		return s
	}
	s.state = sourceValid
	return s
}
