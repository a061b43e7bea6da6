//go:build windows

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
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"
)

const (
	installedRootsKey = `SOFTWARE\Microsoft\Windows Kits\Installed Roots`
	kitsRootValue     = "KitsRoot10"
)

func init() {
	registryContentRoot = func() (string, bool) {
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, installedRootsKey, registry.QUERY_VALUE|registry.WOW64_32KEY)
		if err != nil {
			logger.WithError(err).Debug("cannot open installed kits registry key")
			return "", false
		}
		defer k.Close()
		root, _, err := k.GetStringValue(kitsRootValue)
		if err != nil {
			logger.WithError(err).Debugf("cannot read %s", kitsRootValue)
			return "", false
		}
		return root, true
	}
}
