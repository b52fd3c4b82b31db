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

// Package jira creates and releases JIRA project versions and moves the
// unresolved issues of a released version to the next one.
package jira

import (
	"context"
	"log/slog"
	"strings"
)

// Version is a version of a JIRA project.
type Version struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Released bool   `json:"released"`
	// ReleaseDate is formatted as YYYY-MM-DD.
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// Issue is a JIRA issue with its fix versions.
type Issue struct {
	Key         string
	FixVersions []Version
}

// Client is the subset of the JIRA API used to manage versions.
type Client interface {
	// Login starts a session. It must be called before any other method.
	Login(ctx context.Context, user, password string) error
	// Logout ends the session started by Login.
	Logout(ctx context.Context) error
	ListVersions(ctx context.Context, projectKey string) ([]Version, error)
	CreateVersion(ctx context.Context, projectKey string, v Version) (Version, error)
	// ReleaseVersion marks v as released on v.ReleaseDate.
	ReleaseVersion(ctx context.Context, projectKey string, v Version) error
	// SearchIssues returns at most maxResults issues matching the JQL query.
	SearchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error)
	// UpdateIssueFixVersions replaces the fix versions of an issue.
	UpdateIssueFixVersions(ctx context.Context, issueKey string, versionIDs []string) error
}

// WithSession logs in, runs fn and logs out, even when fn fails. A logout
// failure is returned only when fn succeeded.
func WithSession(ctx context.Context, client Client, user, password string, fn func(ctx context.Context) error) (err error) {
	if err := client.Login(ctx, user, password); err != nil {
		return err
	}
	defer func() {
		if lerr := client.Logout(ctx); lerr != nil {
			if err == nil {
				err = lerr
				return
			}
			slog.Warn("failed to log out of jira", "error", lerr)
		}
	}()
	return fn(ctx)
}

func findVersion(versions []Version, name string) (Version, bool) {
	for _, v := range versions {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Version{}, false
}
