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
	"path/filepath"

	"github.com/falcosecurity/wdkbuild/pkg/filesystem"
	"github.com/falcosecurity/wdkbuild/pkg/sdkversion"
	logger "github.com/sirupsen/logrus"
)

const (
	includeDirectory = "Include"
	libraryDirectory = "Lib"
)

// Layout resolves configurations against the directory layout of an
// installed kit.
type Layout struct {
	fs filesystem.Filesystem
}

// NewLayout returns a Layout reading the kit from fs.
func NewLayout(fs filesystem.Filesystem) *Layout {
	return &Layout{fs: fs}
}

// LatestSDKVersion returns the greatest kit version directory under dir.
func (l *Layout) LatestSDKVersion(dir string) (sdkversion.SDKVersion, error) {
	names, err := l.fs.SubDirs(dir)
	if err != nil {
		return sdkversion.SDKVersion{}, &SDKVersionError{Directory: dir, Err: err}
	}
	v, ok := sdkversion.Latest(names)
	if !ok {
		return sdkversion.SDKVersion{}, &SDKVersionError{Directory: dir}
	}
	return v, nil
}

// IncludePaths returns the header search paths c needs, in search order.
func (l *Layout) IncludePaths(c Config) ([]string, error) {
	includeDir := filepath.Join(c.ContentRoot, includeDirectory)
	v, err := l.LatestSDKVersion(includeDir)
	if err != nil {
		return nil, err
	}
	sdkIncludeDir := filepath.Join(includeDir, v.String())

	dirs := []string{
		filepath.Join(sdkIncludeDir, "km", "crt"),
		filepath.Join(sdkIncludeDir, modeDirectory(c.Driver)),
		filepath.Join(sdkIncludeDir, "shared"),
	}
	switch d := c.Driver.(type) {
	case WDMConfig:
	case KMDFConfig:
		dirs = append(dirs, filepath.Join(includeDir, "wdf", "kmdf", frameworkVersion(d.VersionMajor, d.VersionMinor)))
	case UMDFConfig:
		dirs = append(dirs, filepath.Join(includeDir, "wdf", "umdf", frameworkVersion(d.VersionMajor, d.VersionMinor)))
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}

	logger.WithFields(logger.Fields{
		"driver":      c.Driver,
		"sdk_version": v.String(),
	}).Debug("resolving include paths")
	return l.resolve(dirs)
}

// LibraryPaths returns the library search paths c needs, in search order.
func (l *Layout) LibraryPaths(c Config) ([]string, error) {
	libraryDir := filepath.Join(c.ContentRoot, libraryDirectory)
	v, err := l.LatestSDKVersion(libraryDir)
	if err != nil {
		return nil, err
	}
	arch := c.Architecture.WindowsString()

	dirs := []string{
		filepath.Join(libraryDir, v.String(), modeDirectory(c.Driver), arch),
	}
	switch d := c.Driver.(type) {
	case WDMConfig:
	case KMDFConfig:
		dirs = append(dirs, filepath.Join(libraryDir, "wdf", "kmdf", arch, frameworkVersion(d.VersionMajor, d.VersionMinor)))
	case UMDFConfig:
		dirs = append(dirs, filepath.Join(libraryDir, "wdf", "umdf", arch, frameworkVersion(d.VersionMajor, d.VersionMinor)))
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}

	logger.WithFields(logger.Fields{
		"driver":      c.Driver,
		"arch":        arch,
		"sdk_version": v.String(),
	}).Debug("resolving library paths")
	return l.resolve(dirs)
}

// resolve checks dirs in order and stops at the first missing one.
func (l *Layout) resolve(dirs []string) ([]string, error) {
	res := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if !l.fs.IsDir(dir) {
			return nil, &DirectoryNotFoundError{Directory: dir}
		}
		p, err := filesystem.CanonicalizeAndStrip(l.fs, dir)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

// modeDirectory is "km" for kernel-mode drivers and "um" for user-mode ones.
func modeDirectory(d DriverConfig) string {
	switch d.(type) {
	case WDMConfig, KMDFConfig:
		return "km"
	case UMDFConfig:
		return "um"
	}
	panic(fmt.Sprintf("unsupported driver configuration %T", d))
}

func frameworkVersion(major, minor uint8) string {
	return fmt.Sprintf("%d.%d", major, minor)
}
