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

// Package bindgen assembles the clang arguments a bindings generator needs
// to parse the kit headers for a given configuration.
package bindgen

import (
	"fmt"
	"strconv"

	"github.com/falcosecurity/wdkbuild/pkg/wdk"
)

// Define is a preprocessor definition. An empty Value defines Name alone.
type Define struct {
	Name  string
	Value string
}

func (d Define) String() string {
	if d.Value == "" {
		return "-D" + d.Name
	}
	return fmt.Sprintf("-D%s=%s", d.Name, d.Value)
}

// Defines returns the preprocessor definitions the kit headers expect for c.
func Defines(c wdk.Config) []Define {
	var res []Define
	switch c.Architecture {
	case wdk.AMD64:
		res = append(res, Define{Name: "_WIN64"}, Define{Name: "_AMD64_"}, Define{Name: "AMD64"})
	case wdk.ARM64:
		res = append(res, Define{Name: "_ARM64_"}, Define{Name: "ARM64"}, Define{Name: "_USE_DECLSPECS_FOR_SAL", Value: "1"}, Define{Name: "STD_CALL"})
	default:
		panic(fmt.Sprintf("unsupported cpu architecture %q", c.Architecture))
	}

	switch d := c.Driver.(type) {
	case wdk.WDMConfig:
		res = append(res, Define{Name: "_KERNEL_MODE"})
	case wdk.KMDFConfig:
		res = append(res,
			Define{Name: "_KERNEL_MODE"},
			Define{Name: "KMDF_VERSION_MAJOR", Value: strconv.Itoa(int(d.VersionMajor))},
			Define{Name: "KMDF_VERSION_MINOR", Value: strconv.Itoa(int(d.VersionMinor))},
		)
	case wdk.UMDFConfig:
		res = append(res,
			Define{Name: "UMDF_VERSION_MAJOR", Value: strconv.Itoa(int(d.VersionMajor))},
			Define{Name: "UMDF_VERSION_MINOR", Value: strconv.Itoa(int(d.VersionMinor))},
		)
	default:
		panic(fmt.Sprintf("unsupported driver configuration %T", d))
	}
	return res
}

// ClangArgs returns one -I per include path, in search order, followed by
// the definitions of c.
func ClangArgs(includePaths []string, c wdk.Config) []string {
	defines := Defines(c)
	res := make([]string, 0, len(includePaths)+len(defines))
	for _, p := range includePaths {
		res = append(res, "-I"+p)
	}
	for _, d := range defines {
		res = append(res, d.String())
	}
	return res
}
