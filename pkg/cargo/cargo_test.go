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

package cargo

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/falcosecurity/wdkbuild/pkg/buildenv"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
)

func TestDirectiveString(t *testing.T) {
	tests := map[string]struct {
		directive Directive
		want      string
	}{
		"link search": {
			directive: LinkSearch(`C:\kits\Lib\10.0.22621.0\km\x64`),
			want:      `cargo:rustc-link-search=C:\kits\Lib\10.0.22621.0\km\x64`,
		},
		"link lib": {
			directive: LinkLib("ntoskrnl"),
			want:      "cargo:rustc-link-lib=ntoskrnl",
		},
		"cdylib link arg with comma": {
			directive: CdylibLinkArg("/OPT:REF,ICF"),
			want:      "cargo:rustc-cdylib-link-arg=/OPT:REF,ICF",
		},
		"metadata": {
			directive: Metadata("wdk_config", `{"a":1}`),
			want:      `cargo:wdk_config={"a":1}`,
		},
		"no value": {
			directive: Directive{Key: "custom"},
			want:      "cargo:custom",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.directive.String())
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("cargo:rustc-cdylib-link-arg=/ENTRY:DriverEntry\n")
	assert.NilError(t, err)
	assert.Equal(t, CdylibLinkArg("/ENTRY:DriverEntry"), d)

	// the value may itself contain '='
	d, err = Parse(`cargo:wdk_config={"k":"a=b"}`)
	assert.NilError(t, err)
	assert.Equal(t, Key("wdk_config"), d.Key)
	assert.Equal(t, `{"k":"a=b"}`, d.Value)

	_, err = Parse("rustc-link-lib=hal")
	assert.ErrorContains(t, err, "not a build directive")

	_, err = Parse("cargo:=value")
	assert.ErrorContains(t, err, "without key")
}

func TestIsMetadata(t *testing.T) {
	assert.Assert(t, !LinkLib("hal").IsMetadata())
	assert.Assert(t, !LinkSearch("/x").IsMetadata())
	assert.Assert(t, !CdylibLinkArg("/KERNEL").IsMetadata())
	assert.Assert(t, Metadata("wdk_config", "{}").IsMetadata())
}

func TestDependencyEnvKey(t *testing.T) {
	assert.Equal(t, "DEP_WDK_WDK_CONFIG", DependencyEnvKey("wdk", "wdk_config"))
	assert.Equal(t, "DEP_WDK_SYS_WDK_CONFIG", DependencyEnvKey("wdk-sys", "wdk_config"))
	assert.Equal(t, "DEP_MY_DRIVER_WDK_CONFIG", DependencyEnvKey("My-Driver", "WDK_CONFIG"))
}

func TestPrinterAndReadAll(t *testing.T) {
	var b bytes.Buffer
	p := NewPrinter(&b)
	in := []Directive{LinkSearch("/lib"), LinkLib("hal"), Metadata("wdk_config", "{}")}
	assert.NilError(t, p.Print(in...))
	assert.Equal(t, "cargo:rustc-link-search=/lib\ncargo:rustc-link-lib=hal\ncargo:wdk_config={}\n", b.String())

	out, err := ReadAll(strings.NewReader("some compiler noise\n" + b.String()))
	assert.NilError(t, err)
	assert.DeepEqual(t, in, out)

	out, err = ReadAll(strings.NewReader("warning: unused variable\n"))
	assert.NilError(t, err)
	assert.DeepEqual(t, []Directive{}, out, cmpopts.EquateEmpty())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestPrinterWriteError(t *testing.T) {
	err := NewPrinter(failingWriter{}).Print(LinkLib("hal"))
	assert.ErrorContains(t, err, "broken pipe")
}

func TestForward(t *testing.T) {
	env := buildenv.NewMap(nil)
	err := Forward(env, "wdk-sys", []Directive{
		LinkLib("hal"),
		Metadata("wdk_config", `{"x":1}`),
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"DEP_WDK_SYS_WDK_CONFIG"}, env.Keys())
	v, ok := env.Lookup("DEP_WDK_SYS_WDK_CONFIG")
	assert.Assert(t, ok)
	assert.Equal(t, `{"x":1}`, v)
}
