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

// Package wdk models the configuration of a Windows driver build and
// resolves it against an installed driver kit.
package wdk

import (
	"fmt"
	"strings"
)

// DriverType is the driver model a configuration targets.
type DriverType string

const (
	// DriverTypeWDM is the Windows Driver Model.
	DriverTypeWDM DriverType = "wdm"
	// DriverTypeKMDF is the Kernel Mode Driver Framework.
	DriverTypeKMDF DriverType = "kmdf"
	// DriverTypeUMDF is the User Mode Driver Framework.
	DriverTypeUMDF DriverType = "umdf"
)

// DriverTypes lists the supported driver types.
var DriverTypes = []DriverType{DriverTypeWDM, DriverTypeKMDF, DriverTypeUMDF}

func (t DriverType) String() string {
	return string(t)
}

// DriverConfig is implemented by WDMConfig, KMDFConfig and UMDFConfig only.
type DriverConfig interface {
	DriverType() DriverType
	isDriverConfig()
}

// WDMConfig selects a WDM driver. It has no framework version.
type WDMConfig struct{}

// KMDFConfig selects a KMDF driver built against the given framework version.
type KMDFConfig struct {
	VersionMajor uint8
	VersionMinor uint8
}

// UMDFConfig selects a UMDF driver built against the given framework version.
type UMDFConfig struct {
	VersionMajor uint8
	VersionMinor uint8
}

func (WDMConfig) DriverType() DriverType  { return DriverTypeWDM }
func (KMDFConfig) DriverType() DriverType { return DriverTypeKMDF }
func (UMDFConfig) DriverType() DriverType { return DriverTypeUMDF }

func (WDMConfig) isDriverConfig()  {}
func (KMDFConfig) isDriverConfig() {}
func (UMDFConfig) isDriverConfig() {}

// NewKMDFConfig returns the KMDF 1.33 configuration.
func NewKMDFConfig() KMDFConfig {
	// FIXME: derive from the targeted OS version
	return KMDFConfig{VersionMajor: 1, VersionMinor: 33}
}

// NewUMDFConfig returns the UMDF 2.33 configuration.
func NewUMDFConfig() UMDFConfig {
	// FIXME: derive from the targeted OS version
	return UMDFConfig{VersionMajor: 2, VersionMinor: 33}
}

func (c KMDFConfig) String() string {
	return fmt.Sprintf("kmdf-%d.%d", c.VersionMajor, c.VersionMinor)
}

func (c UMDFConfig) String() string {
	return fmt.Sprintf("umdf-%d.%d", c.VersionMajor, c.VersionMinor)
}

func (WDMConfig) String() string {
	return DriverTypeWDM.String()
}

// CPUArchitecture is the architecture the driver is built for.
type CPUArchitecture string

const (
	AMD64 CPUArchitecture = "AMD64"
	ARM64 CPUArchitecture = "ARM64"
)

// CPUArchitectures lists the supported architectures.
var CPUArchitectures = []CPUArchitecture{AMD64, ARM64}

func (a CPUArchitecture) String() string {
	return string(a)
}

// WindowsString returns the directory token the kit uses for a.
func (a CPUArchitecture) WindowsString() string {
	switch a {
	case AMD64:
		return "x64"
	case ARM64:
		return "ARM64"
	}
	panic(fmt.Sprintf("unsupported cpu architecture: %q", string(a)))
}

// ParseCPUArchitecture accepts the canonical names plus the spellings used
// by Go, Rust targets and the kit itself.
func ParseCPUArchitecture(s string) (CPUArchitecture, error) {
	switch strings.ToLower(s) {
	case "amd64", "x86_64", "x64":
		return AMD64, nil
	case "arm64", "aarch64":
		return ARM64, nil
	}
	return "", fmt.Errorf("unsupported cpu architecture: %q", s)
}

// Config describes a single driver build. It is comparable: two
// configurations are equal when all their fields, framework versions
// included, are equal.
type Config struct {
	ContentRoot  string
	Driver       DriverConfig
	Architecture CPUArchitecture
}

// Equal reports whether c and o describe the same build.
func (c Config) Equal(o Config) bool {
	return c == o
}

func (c Config) String() string {
	var driver any = noDriver{}
	if c.Driver != nil {
		driver = c.Driver
	}
	return fmt.Sprintf("%s/%s@%s", driver, c.Architecture, c.ContentRoot)
}

type noDriver struct{}

func (noDriver) String() string { return "<no driver>" }
