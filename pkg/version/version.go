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
// Package version exposes the build metadata of wdkbuild.
package version

import (
	"fmt"
	"strconv"
	"time"

	"github.com/blang/semver"
)

// Populated by makefile
var (
	gitCommit         string
	commitsFromGitTag string
	gitTag            string
	buildTime         string
)

const versionFormat = "%s-%s+%s"

// GitCommit returns the git commit of the current wdkbuild version.
func GitCommit() string {
	return gitCommit
}

// GitTag returns the git tag of the current wdkbuild version.
func GitTag() string {
	return gitTag
}

// CommitsSinceGitTag returns the number of git commits since the tag of the current wdkbuild version.
func CommitsSinceGitTag() string {
	return commitsFromGitTag
}

// Time returns the build time of the current wdkbuild version.
func Time() *time.Time {
	if len(buildTime) == 0 {
		return nil
	}
	i, err := strconv.ParseInt(buildTime, 10, 64)
	if err != nil {
		return nil
	}
	t := time.Unix(i, 0)
	return &t
}

// SemVer returns the semantic version of the git tag.
func SemVer() (semver.Version, error) {
	if gitTag == "" {
		return semver.Version{}, fmt.Errorf("no git tag set at build time")
	}
	v, err := semver.ParseTolerant(gitTag)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid git tag %q: %w", gitTag, err)
	}
	return v, nil
}

// String returns current wdkbuild version info as a string.
func String() string {
	return fmt.Sprintf(versionFormat, GitTag(), CommitsSinceGitTag(), GitCommit())
}
