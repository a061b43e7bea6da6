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
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/cargo"
	"gotest.tools/v3/assert"
)

var (
	kmdfAMD64 = Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64}
	kmdfARM64 = Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: ARM64}
	umdfAMD64 = Config{ContentRoot: testRoot, Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: AMD64}
)

func mustJSON(t *testing.T, c Config) string {
	t.Helper()
	data, err := json.Marshal(c)
	assert.NilError(t, err)
	return string(data)
}

func TestDependencyEnvKeys(t *testing.T) {
	assert.Equal(t, "DEP_WDK_WDK_CONFIG", DependencyEnvKey(WDKLinks))
	assert.Equal(t, "DEP_WDK_SYS_WDK_CONFIG", DependencyEnvKey(WDKSysLinks))
}

func TestExportConfigRoundTrip(t *testing.T) {
	configs := []Config{
		{ContentRoot: `C:\Program Files (x86)\Windows Kits\10`, Driver: WDMConfig{}, Architecture: AMD64},
		kmdfARM64,
		umdfAMD64,
		{ContentRoot: testRoot, Driver: UMDFConfig{VersionMajor: 1, VersionMinor: 11}, Architecture: ARM64},
	}
	for _, c := range configs {
		t.Run(c.String(), func(t *testing.T) {
			env := buildenv.NewMap(map[string]string{buildenv.ManifestLinksEnv: "my-driver"})
			var out bytes.Buffer
			assert.NilError(t, ExportConfig(env, cargo.NewPrinter(&out), c))

			directives, err := cargo.ReadAll(&out)
			assert.NilError(t, err)
			assert.Equal(t, 1, len(directives))
			assert.Equal(t, cargo.Key(ConfigKey), directives[0].Key)

			// what the orchestrator does for the dependents
			downstream := buildenv.NewMap(nil)
			assert.NilError(t, cargo.Forward(downstream, "my-driver", directives))

			got, err := FromLinkName(downstream, "my-driver")
			assert.NilError(t, err)
			assert.Assert(t, got.Equal(c))
		})
	}
}

func TestExportConfigMissingLinks(t *testing.T) {
	var out bytes.Buffer
	err := ExportConfig(buildenv.NewMap(nil), cargo.NewPrinter(&out), kmdfAMD64)
	assert.Assert(t, errors.Is(err, ErrMissingLinksValue))
	assert.Equal(t, "", out.String())
}

func TestFromLinkName(t *testing.T) {
	_, err := FromLinkName(buildenv.NewMap(nil), "wdk")
	var envErr *EnvVarError
	assert.Assert(t, errors.As(err, &envErr))
	assert.Equal(t, "DEP_WDK_WDK_CONFIG", envErr.Key)

	env := buildenv.NewMap(map[string]string{"DEP_WDK_WDK_CONFIG": "{not json"})
	_, err = FromLinkName(env, "wdk")
	var deserializeErr *DeserializeError
	assert.Assert(t, errors.As(err, &deserializeErr))
	assert.Equal(t, "DEP_WDK_WDK_CONFIG", deserializeErr.Source)
}

func TestFromEnvAuto(t *testing.T) {
	const (
		key1 = "DEP_WDK_WDK_CONFIG"
		key2 = "DEP_WDK_SYS_WDK_CONFIG"
	)
	tests := map[string]struct {
		vars         map[string]string
		want         Config
		wantMismatch *ConfigMismatchError
		wantNotFound bool
		wantDecode   string
	}{
		"both present and equal": {
			vars: map[string]string{key1: mustJSON(t, kmdfAMD64), key2: mustJSON(t, kmdfAMD64)},
			want: kmdfAMD64,
		},
		"both present, architecture differs": {
			vars: map[string]string{key1: mustJSON(t, kmdfAMD64), key2: mustJSON(t, kmdfARM64)},
			wantMismatch: &ConfigMismatchError{
				Config1: kmdfAMD64, Config1Source: key1,
				Config2: kmdfARM64, Config2Source: key2,
			},
		},
		"both present, content root differs": {
			vars: map[string]string{
				key1: mustJSON(t, kmdfAMD64),
				key2: mustJSON(t, Config{ContentRoot: "/ewdk", Driver: kmdfAMD64.Driver, Architecture: AMD64}),
			},
			wantMismatch: &ConfigMismatchError{
				Config1: kmdfAMD64, Config1Source: key1,
				Config2: Config{ContentRoot: "/ewdk", Driver: kmdfAMD64.Driver, Architecture: AMD64}, Config2Source: key2,
			},
		},
		"both present, kmdf minor version differs": {
			vars: map[string]string{
				key1: mustJSON(t, kmdfAMD64),
				key2: mustJSON(t, Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 31}, Architecture: AMD64}),
			},
			wantMismatch: &ConfigMismatchError{
				Config1: kmdfAMD64, Config1Source: key1,
				Config2: Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 31}, Architecture: AMD64}, Config2Source: key2,
			},
		},
		"both present, driver kind differs with same version": {
			vars: map[string]string{
				key1: mustJSON(t, Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: KMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: AMD64}),
				key2: mustJSON(t, Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: AMD64}),
			},
			wantMismatch: &ConfigMismatchError{
				Config1: Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: KMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: AMD64}, Config1Source: key1,
				Config2: Config{ContentRoot: kmdfAMD64.ContentRoot, Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: AMD64}, Config2Source: key2,
			},
		},
		"only first": {
			vars: map[string]string{key1: mustJSON(t, umdfAMD64)},
			want: umdfAMD64,
		},
		"only second": {
			vars: map[string]string{key2: mustJSON(t, umdfAMD64)},
			want: umdfAMD64,
		},
		"neither": {
			vars:         map[string]string{"DEP_OTHER_WDK_CONFIG": mustJSON(t, umdfAMD64)},
			wantNotFound: true,
		},
		"first malformed, second valid": {
			vars:       map[string]string{key1: "{", key2: mustJSON(t, umdfAMD64)},
			wantDecode: key1,
		},
		"first valid, second malformed": {
			vars:       map[string]string{key1: mustJSON(t, umdfAMD64), key2: `{"wdk_content_root":"/k"}`},
			wantDecode: key2,
		},
		"only second, malformed": {
			vars:       map[string]string{key2: ""},
			wantDecode: key2,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := FromEnvAuto(buildenv.NewMap(tt.vars))
			switch {
			case tt.wantMismatch != nil:
				var mismatch *ConfigMismatchError
				assert.Assert(t, errors.As(err, &mismatch), "unexpected error: %v", err)
				assert.Equal(t, *tt.wantMismatch, *mismatch)
			case tt.wantNotFound:
				assert.Assert(t, errors.Is(err, ErrConfigNotFound), "unexpected error: %v", err)
			case tt.wantDecode != "":
				var deserializeErr *DeserializeError
				assert.Assert(t, errors.As(err, &deserializeErr), "unexpected error: %v", err)
				assert.Equal(t, tt.wantDecode, deserializeErr.Source)
			default:
				assert.NilError(t, err)
				assert.Assert(t, got.Equal(tt.want))
			}
		})
	}
}

func TestConfigMismatchErrorMessage(t *testing.T) {
	err := &ConfigMismatchError{
		Config1: kmdfAMD64, Config1Source: "DEP_WDK_WDK_CONFIG",
		Config2: kmdfARM64, Config2Source: "DEP_WDK_SYS_WDK_CONFIG",
	}
	assert.Equal(t, "config from DEP_WDK_WDK_CONFIG does not match config from DEP_WDK_SYS_WDK_CONFIG:\n"+
		"config_1: kmdf-1.33/AMD64@/kits/10\n"+
		"config_2: kmdf-1.33/ARM64@/kits/10", err.Error())
}
