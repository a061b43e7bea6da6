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
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound is returned when no dependency published a configuration.
	ErrConfigNotFound = errors.New("no WDK configs exported from dependencies could be found")
	// ErrMissingLinksValue is returned when exporting from a package that
	// does not declare a links value.
	ErrMissingLinksValue = errors.New("missing `links` value in the package manifest: metadata is unable to propagate to dependents without a `links` value")
	// ErrContentRootNotFound is returned when the kit installation cannot be located.
	ErrContentRootNotFound = errors.New("WDKContentRoot should be able to be detected: ensure that the WDK is installed, or that the environment setup scripts in the eWDK have been run")
)

// DirectoryNotFoundError is returned when a directory required by the
// configuration is missing from the kit.
type DirectoryNotFoundError struct {
	Directory string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("cannot find directory: %s", e.Directory)
}

// SDKVersionError is returned when no versioned kit directory can be found.
type SDKVersionError struct {
	Directory string
	Err       error
}

func (e *SDKVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot find a kit version under %s: %v", e.Directory, e.Err)
	}
	return fmt.Sprintf("cannot find a kit version under %s", e.Directory)
}

func (e *SDKVersionError) Unwrap() error {
	return e.Err
}

// EnvVarError is returned when an expected variable is not set.
type EnvVarError struct {
	Key string
}

func (e *EnvVarError) Error() string {
	return fmt.Sprintf("environment variable not found: %s", e.Key)
}

// DeserializeError is returned when a published configuration is malformed.
type DeserializeError struct {
	Source string
	Err    error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("error deserializing config from %s: %v", e.Source, e.Err)
}

func (e *DeserializeError) Unwrap() error {
	return e.Err
}

// ConfigMismatchError is returned when two dependencies published
// different configurations.
type ConfigMismatchError struct {
	Config1       Config
	Config1Source string
	Config2       Config
	Config2Source string
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("config from %s does not match config from %s:\nconfig_1: %+v\nconfig_2: %+v",
		e.Config1Source, e.Config2Source, e.Config1, e.Config2)
}
