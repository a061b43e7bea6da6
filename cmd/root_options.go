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

package cmd

import (
	"errors"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/filesystem"
	"github.com/falcosecurity/wdkbuild/pkg/wdk"
	"github.com/falcosecurity/wdkbuild/validate"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RootOptions describe the configuration of the build.
type RootOptions struct {
	ContentRoot  string `mapstructure:"content-root" name:"content root"`
	Driver       string `mapstructure:"driver" default:"wdm" validate:"required,driver" name:"driver"`
	KMDFVersion  string `mapstructure:"kmdf-version" validate:"omitempty,frameworkversion" name:"kmdf version"`
	UMDFVersion  string `mapstructure:"umdf-version" validate:"omitempty,frameworkversion" name:"umdf version"`
	Architecture string `mapstructure:"architecture" validate:"omitempty,architecture" name:"architecture"`
}

func init() {
	validate.V.RegisterStructValidation(RootOptionsLevelValidation, RootOptions{})
}

// NewRootOptions ...
func NewRootOptions() *RootOptions {
	rootOpts := &RootOptions{}
	if err := defaults.Set(rootOpts); err != nil {
		logger.WithError(err).WithField("options", "RootOptions").Fatal("error setting wdkbuild options defaults")
	}
	return rootOpts
}

// AddFlags registers the build configuration flags.
func (ro *RootOptions) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&ro.ContentRoot, "content-root", ro.ContentRoot, "root of the kit installation (detected when empty)")
	flags.StringVarP(&ro.Driver, "driver", "d", ro.Driver, "driver model to build (wdm, kmdf, umdf)")
	flags.StringVar(&ro.KMDFVersion, "kmdf-version", ro.KMDFVersion, "KMDF version to build against (default 1.33)")
	flags.StringVar(&ro.UMDFVersion, "umdf-version", ro.UMDFVersion, "UMDF version to build against (default 2.33)")
	flags.StringVarP(&ro.Architecture, "architecture", "a", ro.Architecture, "target architecture (detected when empty)")
}

// Merge decodes the settings merged by v (flags, environment variables
// and config file) into the options.
func (ro *RootOptions) Merge(v *viper.Viper) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           ro,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return fmt.Errorf("error merging build options: %w", err)
	}
	return nil
}

// Validate validates the RootOptions fields.
func (ro *RootOptions) Validate() []error {
	if err := validate.V.Struct(ro); err != nil {
		var errs validator.ValidationErrors
		errors.As(err, &errs)
		errArr := []error{}
		for _, e := range errs {
			// Translate each error one at a time
			errArr = append(errArr, errors.New(e.Translate(validate.T)))
		}
		return errArr
	}
	return nil
}

// Log emits a log line containing the receiving RootOptions for debugging purposes.
//
// Call it only after validation.
func (ro *RootOptions) Log() {
	fields := logger.Fields{}
	if ro.ContentRoot != "" {
		fields["content-root"] = ro.ContentRoot
	}
	if ro.KMDFVersion != "" {
		fields["kmdf-version"] = ro.KMDFVersion
	}
	if ro.UMDFVersion != "" {
		fields["umdf-version"] = ro.UMDFVersion
	}
	if ro.Architecture != "" {
		fields["arch"] = ro.Architecture
	}
	fields["driver"] = ro.Driver

	logger.WithFields(fields).Debug("running with options")
}

// ToConfig builds the configuration described by the options. Fields left
// empty are detected from env and fs.
func (ro *RootOptions) ToConfig(env buildenv.Provider, fs filesystem.Filesystem) (wdk.Config, error) {
	version := ""
	switch wdk.DriverType(ro.Driver) {
	case wdk.DriverTypeKMDF:
		version = ro.KMDFVersion
	case wdk.DriverTypeUMDF:
		version = ro.UMDFVersion
	}
	driver, err := wdk.NewDriverConfig(wdk.DriverType(ro.Driver), version)
	if err != nil {
		return wdk.Config{}, err
	}

	opts := []wdk.Option{
		wdk.WithEnv(env),
		wdk.WithFilesystem(fs),
		wdk.WithDriverConfig(driver),
	}
	if ro.ContentRoot != "" {
		opts = append(opts, wdk.WithContentRoot(ro.ContentRoot))
	}
	if ro.Architecture != "" {
		arch, err := wdk.ParseCPUArchitecture(ro.Architecture)
		if err != nil {
			return wdk.Config{}, err
		}
		opts = append(opts, wdk.WithCPUArchitecture(arch))
	}
	return wdk.Detect(opts...)
}

// RootOptionsLevelValidation validates the framework versions against the driver.
//
// It reports an error when a framework version is given for a driver not using that framework.
func RootOptionsLevelValidation(level validator.StructLevel) {
	opts := level.Current().Interface().(RootOptions)

	if opts.KMDFVersion != "" && opts.Driver != wdk.DriverTypeKMDF.String() {
		level.ReportError(opts.KMDFVersion, "kmdf version", "KMDFVersion", "admitted_only_with_driver", wdk.DriverTypeKMDF.String())
	}

	if opts.UMDFVersion != "" && opts.Driver != wdk.DriverTypeUMDF.String() {
		level.ReportError(opts.UMDFVersion, "umdf version", "UMDFVersion", "admitted_only_with_driver", wdk.DriverTypeUMDF.String())
	}
}
