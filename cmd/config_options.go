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
	"strings"

	"github.com/creasty/defaults"
	"github.com/falcosecurity/wdkbuild/validate"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "wdkbuild"
	configFileName = ".wdkbuild"
)

// ConfigOptions represent the persistent configuration flags of wdkbuild.
type ConfigOptions struct {
	ConfigFile string
	LogLevel   string `validate:"logrus" name:"log level" default:"info"`
	DryRun     bool
}

// NewConfigOptions creates an instance of ConfigOptions.
func NewConfigOptions() *ConfigOptions {
	o := &ConfigOptions{}
	if err := defaults.Set(o); err != nil {
		logger.WithError(err).WithField("options", "ConfigOptions").Fatal("error setting wdkbuild options defaults")
	}
	return o
}

// Validate validates the ConfigOptions fields.
func (co *ConfigOptions) Validate() []error {
	if err := validate.V.Struct(co); err != nil {
		var errs validator.ValidationErrors
		errors.As(err, &errs)
		var errArr []error
		for _, e := range errs {
			// Translate each error one at a time
			errArr = append(errArr, errors.New(e.Translate(validate.T)))
		}
		return errArr
	}
	return nil
}

// AddFlags registers the common flags.
func (co *ConfigOptions) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&co.ConfigFile, "config", "c", co.ConfigFile, "config file path (default $HOME/.wdkbuild.yaml if exists)")
	flags.StringVarP(&co.LogLevel, "loglevel", "l", co.LogLevel, "log level")
	flags.BoolVar(&co.DryRun, "dryrun", co.DryRun, "resolve everything but do not print any build directive")
}

// Init reads in config file and ENV variables if set.
//
// It returns true when the configuration options are not valid.
func (co *ConfigOptions) Init(v *viper.Viper) bool {
	if co.ConfigFile != "" {
		v.SetConfigFile(co.ConfigFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			logger.WithError(err).Debug("error getting the home directory")
			// not failing because we fallback to `$HOME/.wdkbuild.yaml` and try with it
		}

		v.AddConfigPath(home)
		v.SetConfigName(configFileName)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// If a config file is found, read it in.
	configFileErr := false
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, ignore ...
			logger.Debug("running without a configuration file")
		} else {
			logger.WithError(err).Error("error reading the configuration file")
			configFileErr = true
		}
	}

	co.LogLevel = v.GetString("loglevel")
	co.DryRun = v.GetBool("dryrun")
	if errs := co.Validate(); errs != nil {
		for _, err := range errs {
			logger.WithError(err).Error("error validating config options")
		}
		return true
	}
	lvl, _ := logger.ParseLevel(co.LogLevel)
	logger.SetLevel(lvl)
	if used := v.ConfigFileUsed(); used != "" && !configFileErr {
		logger.WithField("file", used).Debug("using config file")
	}
	return configFileErr
}
