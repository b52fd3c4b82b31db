// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// BuildNumberProperty names the CI build number property.
	BuildNumberProperty = "BUILD_NUMBER"
	// VersionNameProperty receives the manifest version name.
	VersionNameProperty = "manifestVersionName"
	// VersionCodeProperty receives the manifest version code.
	VersionCodeProperty = "manifestVersionCode"
)

// Version is the version name and code written to a manifest.
type Version struct {
	Name string
	Code string
}

// NewVersion derives the manifest version of a project version. A CI build
// with a build number gets version-BUILD_NUMBER, a local snapshot build gets
// version-<unix millis of now>, and a release keeps its version. The code is
// the digits of the name.
func NewVersion(projectVersion string, props Properties, now time.Time) Version {
	name := projectVersion
	if n, ok := props.Lookup(BuildNumberProperty); ok && strings.TrimSpace(n) != "" {
		name = fmt.Sprintf("%s-%s", projectVersion, strings.TrimSpace(n))
	} else if strings.Contains(strings.ToLower(projectVersion), "snapshot") {
		name = fmt.Sprintf("%s-%d", projectVersion, now.UnixMilli())
	}
	return Version{Name: name, Code: digits(name)}
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
