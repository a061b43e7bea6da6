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

package sdkversion

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	sdkVersionPattern = regexp.MustCompile(`^(?P<major>0|[1-9]\d*)\.(?P<minor>0|[1-9]\d*)\.(?P<build>0|[1-9]\d*)\.(?P<qfe>0|[1-9]\d*)$`)
)

// SDKVersion is a kit version as found in directory names, eg. 10.0.22621.0.
type SDKVersion struct {
	Fullversion string `json:"full_version"`
	Major       uint64 `json:"major"`
	Minor       uint64 `json:"minor"`
	Build       uint64 `json:"build"`
	QFE         uint64 `json:"qfe"`
}

// FromString parses a kit version directory name.
func FromString(s string) (SDKVersion, error) {
	match := sdkVersionPattern.FindStringSubmatch(s)
	if match == nil {
		return SDKVersion{}, fmt.Errorf("not a kit version: %q", s)
	}
	v := SDKVersion{Fullversion: s}
	for i, name := range sdkVersionPattern.SubexpNames() {
		if i == 0 || i >= len(match) {
			continue
		}
		n, err := strconv.ParseUint(match[i], 10, 64)
		if err != nil {
			return SDKVersion{}, fmt.Errorf("kit version %q: %w", s, err)
		}
		switch name {
		case "major":
			v.Major = n
		case "minor":
			v.Minor = n
		case "build":
			v.Build = n
		case "qfe":
			v.QFE = n
		}
	}
	return v, nil
}

func (v SDKVersion) String() string {
	return v.Fullversion
}

// Compare returns -1, 0 or +1 comparing v with o component by component.
func (v SDKVersion) Compare(o SDKVersion) int {
	for _, p := range [][2]uint64{
		{v.Major, o.Major},
		{v.Minor, o.Minor},
		{v.Build, o.Build},
		{v.QFE, o.QFE},
	} {
		switch {
		case p[0] < p[1]:
			return -1
		case p[0] > p[1]:
			return 1
		}
	}
	return 0
}

// Latest returns the greatest version among names. Names that are not kit
// versions (eg. "wdf") are ignored; ok is false when none is left.
func Latest(names []string) (latest SDKVersion, ok bool) {
	for _, name := range names {
		v, err := FromString(name)
		if err != nil {
			continue
		}
		if !ok || v.Compare(latest) > 0 {
			latest = v
			ok = true
		}
	}
	return latest, ok
}
