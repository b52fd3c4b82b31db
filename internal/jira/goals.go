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

package jira

import (
	"context"
	"log/slog"
	"strings"
)

// IsSnapshot reports whether a project version is a development version,
// meaning it mentions SNAPSHOT anywhere.
func IsSnapshot(v string) bool {
	return strings.Contains(v, "SNAPSHOT")
}

// SyncVersion creates the current version of spec unless it exists.
func SyncVersion(ctx context.Context, client Client, spec *VersionSpec) error {
	m, err := NewManager(ctx, client, spec.ProjectKey)
	if err != nil {
		return err
	}
	_, err = m.OptionallyCreateVersion(ctx, spec.CurrentVersion())
	return err
}

// ReleaseVersion releases the current version of spec. For a snapshot it
// only makes sure the version exists.
func ReleaseVersion(ctx context.Context, client Client, spec *VersionSpec, branch bool) error {
	if IsSnapshot(spec.ExistingVersion) {
		slog.Info("snapshot version, not releasing", "project", spec.ProjectKey, "version", spec.ExistingVersion)
		return SyncVersion(ctx, client, spec)
	}
	m, err := NewManager(ctx, client, spec.ProjectKey)
	if err != nil {
		return err
	}
	return m.Release(ctx, spec, branch)
}

// ReleaseMultiple runs ReleaseVersion for each spec, in order.
func ReleaseMultiple(ctx context.Context, client Client, specs []*VersionSpec, branch bool) error {
	if len(specs) == 0 {
		slog.Warn("no jira versions configured")
		return nil
	}
	for _, spec := range specs {
		if err := ReleaseVersion(ctx, client, spec, branch); err != nil {
			return err
		}
	}
	return nil
}
