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
	"errors"
	"fmt"
)

// Wire names of the serialized configuration. They are shared with the
// non-Go build units that publish configurations, so they must not change.
const (
	wdmVariant  = "WDM"
	kmdfVariant = "KMDFConfig"
	umdfVariant = "UMDFConfig"
)

type configJSON struct {
	ContentRoot  *string          `json:"wdk_content_root"`
	Driver       *json.RawMessage `json:"driver_config"`
	Architecture *CPUArchitecture `json:"cpu_architecture"`
}

type kmdfJSON struct {
	VersionMajor *uint8 `json:"kmdf_version_major"`
	VersionMinor *uint8 `json:"kmdf_version_minor"`
}

type umdfJSON struct {
	VersionMajor *uint8 `json:"umdf_version_major"`
	VersionMinor *uint8 `json:"umdf_version_minor"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	var driver any
	switch d := c.Driver.(type) {
	case WDMConfig:
		driver = map[string][]struct{}{wdmVariant: {}}
	case KMDFConfig:
		driver = map[string]kmdfJSON{kmdfVariant: {VersionMajor: &d.VersionMajor, VersionMinor: &d.VersionMinor}}
	case UMDFConfig:
		driver = map[string]umdfJSON{umdfVariant: {VersionMajor: &d.VersionMajor, VersionMinor: &d.VersionMinor}}
	case nil:
		return nil, errors.New("config has no driver configuration")
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}
	rawDriver, err := json.Marshal(driver)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(rawDriver)
	arch := c.Architecture
	switch arch {
	case AMD64, ARM64:
	default:
		return nil, fmt.Errorf("unsupported cpu architecture: %q", string(arch))
	}
	root := c.ContentRoot
	return json.Marshal(configJSON{
		ContentRoot:  &root,
		Driver:       &raw,
		Architecture: &arch,
	})
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var cj configJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	switch {
	case cj.ContentRoot == nil:
		return errors.New("missing field `wdk_content_root`")
	case cj.Driver == nil:
		return errors.New("missing field `driver_config`")
	case cj.Architecture == nil:
		return errors.New("missing field `cpu_architecture`")
	}
	driver, err := unmarshalDriverConfig(*cj.Driver)
	if err != nil {
		return err
	}
	*c = Config{
		ContentRoot:  *cj.ContentRoot,
		Driver:       driver,
		Architecture: *cj.Architecture,
	}
	return nil
}

func (a *CPUArchitecture) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch CPUArchitecture(s) {
	case AMD64, ARM64:
		*a = CPUArchitecture(s)
		return nil
	}
	return fmt.Errorf("unknown variant `%s`, expected `AMD64` or `ARM64`", s)
}

func unmarshalDriverConfig(data []byte) (DriverConfig, error) {
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, fmt.Errorf("driver_config: %w", err)
	}
	if len(variants) != 1 {
		return nil, fmt.Errorf("driver_config: expected exactly one variant, got %d", len(variants))
	}
	for name, payload := range variants {
		switch name {
		case wdmVariant:
			var fields []json.RawMessage
			if err := json.Unmarshal(payload, &fields); err != nil {
				return nil, fmt.Errorf("driver_config.%s: %w", name, err)
			}
			if len(fields) != 0 {
				return nil, fmt.Errorf("driver_config.%s: expected no fields, got %d", name, len(fields))
			}
			return WDMConfig{}, nil
		case kmdfVariant:
			var k kmdfJSON
			if err := json.Unmarshal(payload, &k); err != nil {
				return nil, fmt.Errorf("driver_config.%s: %w", name, err)
			}
			if k.VersionMajor == nil || k.VersionMinor == nil {
				return nil, fmt.Errorf("driver_config.%s: missing framework version", name)
			}
			return KMDFConfig{VersionMajor: *k.VersionMajor, VersionMinor: *k.VersionMinor}, nil
		case umdfVariant:
			var u umdfJSON
			if err := json.Unmarshal(payload, &u); err != nil {
				return nil, fmt.Errorf("driver_config.%s: %w", name, err)
			}
			if u.VersionMajor == nil || u.VersionMinor == nil {
				return nil, fmt.Errorf("driver_config.%s: missing framework version", name)
			}
			return UMDFConfig{VersionMajor: *u.VersionMajor, VersionMinor: *u.VersionMinor}, nil
		default:
			return nil, fmt.Errorf("driver_config: unknown variant `%s`", name)
		}
	}
	return nil, errors.New("driver_config: unreachable")
}
