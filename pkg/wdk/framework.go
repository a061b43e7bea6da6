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
	"fmt"
	"math"
	"regexp"

	"github.com/blang/semver"
)

var frameworkVersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// ParseFrameworkVersion parses a framework version such as "1.33". Exactly
// two numeric components are accepted.
func ParseFrameworkVersion(s string) (major, minor uint8, err error) {
	if !frameworkVersionPattern.MatchString(s) {
		return 0, 0, fmt.Errorf("invalid framework version %q: only major and minor are allowed", s)
	}
	v, err := semver.Parse(s + ".0")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid framework version %q: %w", s, err)
	}
	if v.Major > math.MaxUint8 || v.Minor > math.MaxUint8 {
		return 0, 0, fmt.Errorf("invalid framework version %q: components must not exceed %d", s, math.MaxUint8)
	}
	return uint8(v.Major), uint8(v.Minor), nil
}

// NewDriverConfig builds the configuration of the given driver type. The
// version is ignored for WDM and defaults to the latest known one when empty.
func NewDriverConfig(t DriverType, version string) (DriverConfig, error) {
	switch t {
	case DriverTypeWDM:
		return WDMConfig{}, nil
	case DriverTypeKMDF:
		if version == "" {
			return NewKMDFConfig(), nil
		}
		major, minor, err := ParseFrameworkVersion(version)
		if err != nil {
			return nil, err
		}
		return KMDFConfig{VersionMajor: major, VersionMinor: minor}, nil
	case DriverTypeUMDF:
		if version == "" {
			return NewUMDFConfig(), nil
		}
		major, minor, err := ParseFrameworkVersion(version)
		if err != nil {
			return nil, err
		}
		return UMDFConfig{VersionMajor: major, VersionMinor: minor}, nil
	}
	return nil, fmt.Errorf("unsupported driver type: %q", t)
}
