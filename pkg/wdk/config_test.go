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
	"encoding/json"
	"errors"
	"testing"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/falcosecurity/wdkbuild/pkg/filesystem"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const testRoot = "/kits/10"

func newTestFs(t *testing.T, dirs ...string) *filesystem.Local {
	t.Helper()
	mem := filesystem.NewMemory()
	for _, d := range dirs {
		assert.NilError(t, mem.Fs().MkdirAll(d, 0o755))
	}
	return mem
}

func TestWindowsString(t *testing.T) {
	seen := map[string]CPUArchitecture{}
	for _, a := range CPUArchitectures {
		s := a.WindowsString()
		_, dup := seen[s]
		assert.Assert(t, !dup, "%s maps to an already used token %s", a, s)
		seen[s] = a
	}
	assert.DeepEqual(t, map[string]CPUArchitecture{"x64": AMD64, "ARM64": ARM64}, seen)
}

func TestWindowsStringUnsupported(t *testing.T) {
	defer func() {
		assert.Assert(t, recover() != nil)
	}()
	CPUArchitecture("X86").WindowsString()
}

func TestParseCPUArchitecture(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    CPUArchitecture
		wantErr bool
	}{
		"rust x86_64":  {in: "x86_64", want: AMD64},
		"go amd64":     {in: "amd64", want: AMD64},
		"canonical":    {in: "AMD64", want: AMD64},
		"kit token":    {in: "x64", want: AMD64},
		"rust aarch64": {in: "aarch64", want: ARM64},
		"go arm64":     {in: "arm64", want: ARM64},
		"x86":          {in: "x86", wantErr: true},
		"empty":        {in: "", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseCPUArchitecture(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported cpu architecture")
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultFrameworkVersions(t *testing.T) {
	assert.Equal(t, KMDFConfig{VersionMajor: 1, VersionMinor: 33}, NewKMDFConfig())
	assert.Equal(t, UMDFConfig{VersionMajor: 2, VersionMinor: 33}, NewUMDFConfig())
	assert.Equal(t, DriverTypeKMDF, NewKMDFConfig().DriverType())
	assert.Equal(t, DriverTypeUMDF, NewUMDFConfig().DriverType())
	assert.Equal(t, DriverTypeWDM, WDMConfig{}.DriverType())
}

func TestEqual(t *testing.T) {
	base := Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64}
	tests := map[string]struct {
		other Config
		want  bool
	}{
		"identical": {
			other: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64},
			want:  true,
		},
		"different minor": {
			other: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 31}, Architecture: AMD64},
		},
		"same version other framework": {
			other: Config{ContentRoot: testRoot, Driver: UMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64},
		},
		"different architecture": {
			other: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: ARM64},
		},
		"different content root": {
			other: Config{ContentRoot: "/ewdk/kits/10", Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64},
		},
		"wdm": {
			other: Config{ContentRoot: testRoot, Driver: WDMConfig{}, Architecture: AMD64},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, tt.other.Equal(base))
		})
	}
}

func TestDetectDefault(t *testing.T) {
	env := buildenv.NewMap(map[string]string{
		buildenv.TargetArchEnv:  "x86_64",
		buildenv.ContentRootEnv: testRoot,
	})
	c, err := Detect(WithEnv(env), WithFilesystem(newTestFs(t, testRoot)))
	assert.NilError(t, err)
	assert.Equal(t, Config{ContentRoot: testRoot, Driver: WDMConfig{}, Architecture: AMD64}, c)
}

func TestDetectExplicitFields(t *testing.T) {
	env := buildenv.NewMap(map[string]string{buildenv.TargetArchEnv: "aarch64"})
	c, err := Detect(
		WithEnv(env),
		WithFilesystem(newTestFs(t)),
		WithContentRoot("/elsewhere"),
		WithDriverConfig(UMDFConfig{VersionMajor: 2, VersionMinor: 15}),
	)
	assert.NilError(t, err)
	assert.Equal(t, Config{ContentRoot: "/elsewhere", Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 15}, Architecture: ARM64}, c)

	c, err = Detect(WithEnv(env), WithContentRoot("/elsewhere"), WithCPUArchitecture(AMD64))
	assert.NilError(t, err)
	assert.Equal(t, AMD64, c.Architecture)
}

func TestDetectContentRoot(t *testing.T) {
	fs := newTestFs(t, testRoot)

	root, err := DetectContentRoot(buildenv.NewMap(map[string]string{buildenv.ContentRootEnv: testRoot}), fs)
	assert.NilError(t, err)
	assert.Equal(t, testRoot, root)

	_, err = DetectContentRoot(buildenv.NewMap(map[string]string{buildenv.ContentRootEnv: "/missing"}), fs)
	assert.Assert(t, errors.Is(err, ErrContentRootNotFound))

	_, err = DetectContentRoot(buildenv.NewMap(nil), fs)
	assert.Assert(t, errors.Is(err, ErrContentRootNotFound))
}

func TestNewPanicsWithoutContentRoot(t *testing.T) {
	defer func() {
		r := recover()
		assert.Assert(t, r != nil)
		assert.Assert(t, is.Contains(r.(string), "WDKContentRoot should be able to be detected"))
	}()
	New(WithEnv(buildenv.NewMap(map[string]string{buildenv.TargetArchEnv: "x86_64"})), WithFilesystem(newTestFs(t)))
}

func TestNewPanicsOnUnsupportedArchitecture(t *testing.T) {
	defer func() {
		r := recover()
		assert.Assert(t, r != nil)
		assert.Assert(t, is.Contains(r.(string), `unsupported cpu architecture: "riscv64"`))
	}()
	New(WithEnv(buildenv.NewMap(map[string]string{buildenv.TargetArchEnv: "riscv64"})), WithContentRoot(testRoot))
}

func TestConfigString(t *testing.T) {
	tests := map[string]struct {
		config Config
		want   string
	}{
		"wdm":       {config: Config{ContentRoot: testRoot, Driver: WDMConfig{}, Architecture: AMD64}, want: "wdm/AMD64@/kits/10"},
		"kmdf":      {config: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: ARM64}, want: "kmdf-1.33/ARM64@/kits/10"},
		"no driver": {config: Config{ContentRoot: testRoot, Architecture: AMD64}, want: "<no driver>/AMD64@/kits/10"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.String())
		})
	}
}

func TestDetectUnsupportedArchitecture(t *testing.T) {
	env := buildenv.NewMap(map[string]string{buildenv.TargetArchEnv: "riscv64"})
	_, err := Detect(WithEnv(env), WithContentRoot(testRoot))
	assert.ErrorContains(t, err, `unsupported cpu architecture: "riscv64"`)
}

func TestMarshalJSON(t *testing.T) {
	tests := map[string]struct {
		config Config
		want   string
	}{
		"wdm": {
			config: Config{ContentRoot: `C:\Program Files (x86)\Windows Kits\10`, Driver: WDMConfig{}, Architecture: AMD64},
			want:   `{"wdk_content_root":"C:\\Program Files (x86)\\Windows Kits\\10","driver_config":{"WDM":[]},"cpu_architecture":"AMD64"}`,
		},
		"kmdf": {
			config: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: AMD64},
			want:   `{"wdk_content_root":"/kits/10","driver_config":{"KMDFConfig":{"kmdf_version_major":1,"kmdf_version_minor":33}},"cpu_architecture":"AMD64"}`,
		},
		"umdf": {
			config: Config{ContentRoot: testRoot, Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 15}, Architecture: ARM64},
			want:   `{"wdk_content_root":"/kits/10","driver_config":{"UMDFConfig":{"umdf_version_major":2,"umdf_version_minor":15}},"cpu_architecture":"ARM64"}`,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := json.Marshal(tt.config)
			assert.NilError(t, err)
			assert.Equal(t, tt.want, string(got))

			var back Config
			assert.NilError(t, json.Unmarshal(got, &back))
			assert.Assert(t, back.Equal(tt.config))
		})
	}
}

func TestMarshalJSONInvalid(t *testing.T) {
	tests := map[string]struct {
		config Config
		err    string
	}{
		"no driver":     {config: Config{ContentRoot: testRoot, Architecture: AMD64}, err: "no driver configuration"},
		"unknown arch":  {config: Config{ContentRoot: testRoot, Driver: WDMConfig{}, Architecture: "X86"}, err: `unsupported cpu architecture: "X86"`},
		"amd64 alias":   {config: Config{ContentRoot: testRoot, Driver: WDMConfig{}, Architecture: "amd64"}, err: `unsupported cpu architecture: "amd64"`},
		"aarch64 alias": {config: Config{ContentRoot: testRoot, Driver: KMDFConfig{VersionMajor: 1, VersionMinor: 33}, Architecture: "aarch64"}, err: `unsupported cpu architecture: "aarch64"`},
		"empty arch":    {config: Config{ContentRoot: testRoot, Driver: WDMConfig{}}, err: `unsupported cpu architecture: ""`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := json.Marshal(tt.config)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestMarshalJSONRoundTripsParsedArchitectures(t *testing.T) {
	for _, alias := range []string{"amd64", "x86_64", "x64", "arm64", "aarch64", "AMD64", "ARM64"} {
		t.Run(alias, func(t *testing.T) {
			arch, err := ParseCPUArchitecture(alias)
			assert.NilError(t, err)
			c := Config{ContentRoot: testRoot, Driver: UMDFConfig{VersionMajor: 2, VersionMinor: 33}, Architecture: arch}
			data, err := json.Marshal(c)
			assert.NilError(t, err)

			var back Config
			assert.NilError(t, json.Unmarshal(data, &back))
			assert.Equal(t, c, back)
		})
	}
}

func TestUnmarshalJSONInvalid(t *testing.T) {
	tests := map[string]struct {
		data string
		err  string
	}{
		"not json": {
			data: `{"wdk_content_root":`,
			err:  "unexpected end of JSON input",
		},
		"missing root": {
			data: `{"driver_config":{"WDM":[]},"cpu_architecture":"AMD64"}`,
			err:  "missing field `wdk_content_root`",
		},
		"missing driver": {
			data: `{"wdk_content_root":"/k","cpu_architecture":"AMD64"}`,
			err:  "missing field `driver_config`",
		},
		"missing arch": {
			data: `{"wdk_content_root":"/k","driver_config":{"WDM":[]}}`,
			err:  "missing field `cpu_architecture`",
		},
		"unknown arch": {
			data: `{"wdk_content_root":"/k","driver_config":{"WDM":[]},"cpu_architecture":"X86"}`,
			err:  "unknown variant `X86`",
		},
		"unknown driver": {
			data: `{"wdk_content_root":"/k","driver_config":{"NDIS":[]},"cpu_architecture":"AMD64"}`,
			err:  "unknown variant `NDIS`",
		},
		"two drivers": {
			data: `{"wdk_content_root":"/k","driver_config":{"WDM":[],"KMDFConfig":{"kmdf_version_major":1,"kmdf_version_minor":33}},"cpu_architecture":"AMD64"}`,
			err:  "expected exactly one variant, got 2",
		},
		"kmdf without minor": {
			data: `{"wdk_content_root":"/k","driver_config":{"KMDFConfig":{"kmdf_version_major":1}},"cpu_architecture":"AMD64"}`,
			err:  "missing framework version",
		},
		"umdf version overflow": {
			data: `{"wdk_content_root":"/k","driver_config":{"UMDFConfig":{"umdf_version_major":256,"umdf_version_minor":0}},"cpu_architecture":"AMD64"}`,
			err:  "cannot unmarshal number 256",
		},
		"wdm with fields": {
			data: `{"wdk_content_root":"/k","driver_config":{"WDM":[1]},"cpu_architecture":"AMD64"}`,
			err:  "expected no fields",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var c Config
			err := json.Unmarshal([]byte(tt.data), &c)
			assert.ErrorContains(t, err, tt.err)
		})
	}
}
