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

// Package wdkbuilder turns a resolved configuration into the linker
// directives a driver build needs.
package wdkbuilder

import (
	"fmt"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/cargo"
	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	logger "github.com/sirupsen/logrus"
)

// Profile is the build profile the orchestrator runs the build script for.
type Profile string

const (
	ProfileRelease Profile = "release"
	ProfileDebug   Profile = "debug"
)

// ProfileFromEnv returns the build profile. The orchestrator always sets it
// to one of the known profiles, anything else means the build environment
// is broken and we panic.
func ProfileFromEnv(env buildenv.Provider) Profile {
	v, ok := env.Lookup(buildenv.ProfileEnv)
	if !ok {
		panic(fmt.Sprintf("%s should always be set by the build orchestrator", buildenv.ProfileEnv))
	}
	p := Profile(v)
	switch p {
	case ProfileRelease, ProfileDebug:
		return p
	}
	panic(fmt.Sprintf("unexpected %s value: %q", buildenv.ProfileEnv, v))
}

// Libraries linked by every kernel-mode driver.
var kernelModeLibraries = []string{
	"BufferOverflowFastFailK",
	"ntoskrnl",
	"hal",
	"wmilib",
}

var kmdfLibraries = []string{
	"WdfLdr",
	"WdfDriverEntry",
}

// Linker arguments passed to every driver binary.
var baseLinkArgs = []string{
	"/NXCOMPAT",
	"/DYNAMICBASE",
	"/MAP",
	"/MAPINFO:EXPORTS",
	"/OPT:REF,ICF",
	"/INTEGRITYCHECK",
	"/MANIFEST:NO",
}

var kernelModeLinkArgs = []string{
	"/DRIVER",
	"/NODEFAULTLIB",
	"/SUBSYSTEM:NATIVE",
	"/KERNEL",
}

const (
	wdmEntryPoint  = "/ENTRY:DriverEntry"
	kmdfEntryPoint = "/ENTRY:FxDriverEntry"
)

// LibraryBuildDirectives returns the search path directives for
// libraryPaths, in order, followed by the libraries c links against.
// The profile only matters for UMDF drivers.
func LibraryBuildDirectives(c wdk.Config, libraryPaths []string, profile Profile) []cargo.Directive {
	res := make([]cargo.Directive, 0, len(libraryPaths)+len(kernelModeLibraries)+len(kmdfLibraries))
	for _, p := range libraryPaths {
		res = append(res, cargo.LinkSearch(p))
	}

	var libs []string
	switch d := c.Driver.(type) {
	case wdk.WDMConfig:
		libs = kernelModeLibraries
	case wdk.KMDFConfig:
		libs = append(append(libs, kernelModeLibraries...), kmdfLibraries...)
	case wdk.UMDFConfig:
		switch profile {
		case ProfileRelease:
			libs = append(libs, "ucrt")
		case ProfileDebug:
			libs = append(libs, "ucrtd")
		default:
			panic(fmt.Sprintf("unexpected build profile: %q", profile))
		}
		if d.VersionMajor >= 2 {
			libs = append(libs, "WdfDriverStubUm", "ntdll")
		}
		libs = append(libs, "mincore")
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}

	for _, l := range libs {
		res = append(res, cargo.LinkLib(l))
	}
	return res
}

// BinaryBuildDirectives returns the linker arguments of a driver binary
// built for c.
func BinaryBuildDirectives(c wdk.Config) []cargo.Directive {
	args := append([]string{}, baseLinkArgs...)
	switch d := c.Driver.(type) {
	case wdk.WDMConfig:
		args = append(append(args, kernelModeLinkArgs...), wdmEntryPoint)
	case wdk.KMDFConfig:
		args = append(append(args, kernelModeLinkArgs...), kmdfEntryPoint)
	case wdk.UMDFConfig:
		args = append(args, "/SUBSYSTEM:WINDOWS")
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}

	res := make([]cargo.Directive, 0, len(args))
	for _, a := range args {
		res = append(res, cargo.CdylibLinkArg(a))
	}
	return res
}

// Builder prints the directives of a build script to the orchestrator.
type Builder struct {
	layout  *wdk.Layout
	env     buildenv.Provider
	printer *cargo.Printer
}

// NewBuilder returns a Builder resolving paths with layout, reading the
// build environment from env and writing directives to printer.
func NewBuilder(layout *wdk.Layout, env buildenv.Provider, printer *cargo.Printer) *Builder {
	return &Builder{
		layout:  layout,
		env:     env,
		printer: printer,
	}
}

// ConfigureLibraryBuild prints the directives needed to link a library
// against the kit described by c.
func (b *Builder) ConfigureLibraryBuild(c wdk.Config) error {
	paths, err := b.layout.LibraryPaths(c)
	if err != nil {
		return err
	}
	var profile Profile
	if _, ok := c.Driver.(wdk.UMDFConfig); ok {
		profile = ProfileFromEnv(b.env)
	}
	logger.WithFields(logger.Fields{
		"config":  c.String(),
		"profile": profile,
	}).Debug("configuring library build")
	return b.printer.Print(LibraryBuildDirectives(c, paths, profile)...)
}

// ConfigureBinaryBuild prints the linker arguments of a driver binary.
func (b *Builder) ConfigureBinaryBuild(c wdk.Config) error {
	logger.WithField("config", c.String()).Debug("configuring binary build")
	return b.printer.Print(BinaryBuildDirectives(c)...)
}

// ExportConfig publishes c to the dependents of the package being built.
func (b *Builder) ExportConfig(c wdk.Config) error {
	return wdk.ExportConfig(b.env, b.printer, c)
}
