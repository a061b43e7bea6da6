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
	"runtime"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/filesystem"
	logger "github.com/sirupsen/logrus"
)

// registryContentRoot is replaced on Windows by a lookup of the installed
// kits root.
var registryContentRoot = func() (string, bool) {
	return "", false
}

type options struct {
	env          buildenv.Provider
	fs           filesystem.Filesystem
	contentRoot  string
	driver       DriverConfig
	architecture CPUArchitecture
}

// Option sets a field of the Config being built, or a collaborator used to
// detect the fields left unset.
type Option func(*options)

func WithContentRoot(root string) Option {
	return func(o *options) { o.contentRoot = root }
}

func WithDriverConfig(d DriverConfig) Option {
	return func(o *options) { o.driver = d }
}

func WithCPUArchitecture(a CPUArchitecture) Option {
	return func(o *options) { o.architecture = a }
}

// WithEnv sets the environment detection reads from. Defaults to the
// process environment.
func WithEnv(env buildenv.Provider) Option {
	return func(o *options) { o.env = env }
}

// WithFilesystem sets the filesystem detection checks candidate roots on.
// Defaults to the host filesystem.
func WithFilesystem(fs filesystem.Filesystem) Option {
	return func(o *options) { o.fs = fs }
}

// Detect builds a Config from opts. Fields not given are defaulted: the
// driver to WDM, the architecture and content root to the detected ones.
func Detect(opts ...Option) (Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.env == nil {
		o.env = buildenv.NewOS()
	}
	if o.fs == nil {
		o.fs = filesystem.NewLocal(nil)
	}
	if o.driver == nil {
		o.driver = WDMConfig{}
	}
	if o.architecture == "" {
		arch, err := DetectCPUArchitecture(o.env)
		if err != nil {
			return Config{}, err
		}
		o.architecture = arch
	}
	if o.contentRoot == "" {
		root, err := DetectContentRoot(o.env, o.fs)
		if err != nil {
			return Config{}, err
		}
		o.contentRoot = root
	}
	return Config{
		ContentRoot:  o.contentRoot,
		Driver:       o.driver,
		Architecture: o.architecture,
	}, nil
}

// New is like Detect but detection failures are fatal. Both the kit
// installation and the target architecture are preconditions set up by the
// environment before the build starts, so New panics when either of them
// cannot be detected.
func New(opts ...Option) Config {
	c, err := Detect(opts...)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// DetectContentRoot locates the installed kit. The WDKContentRoot variable,
// set by the eWDK environment scripts, wins over the registry.
func DetectContentRoot(env buildenv.Provider, fs filesystem.Filesystem) (string, error) {
	if root, ok := env.Lookup(buildenv.ContentRootEnv); ok && root != "" {
		if fs.IsDir(root) {
			return root, nil
		}
		logger.WithField("path", root).Warnf("%s does not point to a directory, ignoring it", buildenv.ContentRootEnv)
	}
	if root, ok := registryContentRoot(); ok {
		if fs.IsDir(root) {
			return root, nil
		}
		logger.WithField("path", root).Warn("installed kits root from the registry does not exist, ignoring it")
	}
	return "", ErrContentRootNotFound
}

// DetectCPUArchitecture returns the architecture being built for: the build
// target architecture when the orchestrator sets one, the host one otherwise.
func DetectCPUArchitecture(env buildenv.Provider) (CPUArchitecture, error) {
	if arch, ok := env.Lookup(buildenv.TargetArchEnv); ok {
		return ParseCPUArchitecture(arch)
	}
	return ParseCPUArchitecture(runtime.GOARCH)
}
