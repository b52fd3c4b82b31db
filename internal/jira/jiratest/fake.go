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

// Package jiratest provides an in-memory JIRA server for tests.
package jiratest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/croche/releasekit/internal/jira"
)

// FakeClient is an in-memory jira.Client. Issues assigned to a version are
// found by SearchIssues until their fix versions are updated.
type FakeClient struct {
	// Versions holds the versions of each project.
	Versions map[string][]jira.Version
	// Issues holds the issues of each project.
	Issues map[string][]*jira.Issue

	// LoginErr, LogoutErr and UpdateErr are returned by the matching calls.
	LoginErr  error
	LogoutErr error
	UpdateErr error
	// IgnoreUpdates makes UpdateIssueFixVersions succeed without changes.
	IgnoreUpdates bool

	LoggedIn bool
	// Calls records the methods called, in order.
	Calls  []string
	nextID int
}

var _ jira.Client = (*FakeClient)(nil)

var (
	// ErrNotLoggedIn is returned by calls made outside a session.
	ErrNotLoggedIn = errors.New("jiratest: not logged in")

	query = regexp.MustCompile(`^project='([^']*)' and fixVersion='([^']*)'$`)
)

// Login fails with LoginErr when set.
func (f *FakeClient) Login(ctx context.Context, user, password string) error {
	f.Calls = append(f.Calls, "Login")
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.LoggedIn = true
	return nil
}

// Logout ends the session and returns LogoutErr.
func (f *FakeClient) Logout(ctx context.Context) error {
	f.Calls = append(f.Calls, "Logout")
	f.LoggedIn = false
	return f.LogoutErr
}

// ListVersions returns a copy of the versions of a project.
func (f *FakeClient) ListVersions(ctx context.Context, projectKey string) ([]jira.Version, error) {
	f.Calls = append(f.Calls, "ListVersions")
	if !f.LoggedIn {
		return nil, ErrNotLoggedIn
	}
	return slices.Clone(f.Versions[projectKey]), nil
}

// CreateVersion adds v to the project with a generated id.
func (f *FakeClient) CreateVersion(ctx context.Context, projectKey string, v jira.Version) (jira.Version, error) {
	f.Calls = append(f.Calls, "CreateVersion")
	if !f.LoggedIn {
		return jira.Version{}, ErrNotLoggedIn
	}
	if f.Versions == nil {
		f.Versions = map[string][]jira.Version{}
	}
	f.nextID++
	v.ID = "new-" + strconv.Itoa(f.nextID)
	f.Versions[projectKey] = append(f.Versions[projectKey], v)
	return v, nil
}

// ReleaseVersion marks the version with the id of v as released.
func (f *FakeClient) ReleaseVersion(ctx context.Context, projectKey string, v jira.Version) error {
	f.Calls = append(f.Calls, "ReleaseVersion")
	if !f.LoggedIn {
		return ErrNotLoggedIn
	}
	versions := f.Versions[projectKey]
	for i := range versions {
		if versions[i].ID == v.ID {
			versions[i].Released = true
			versions[i].ReleaseDate = v.ReleaseDate
			return nil
		}
	}
	return fmt.Errorf("jiratest: no version %q in %s", v.ID, projectKey)
}

// SearchIssues understands only fix version queries of the form
// project='KEY' and fixVersion='NAME'.
func (f *FakeClient) SearchIssues(ctx context.Context, jql string, maxResults int) ([]jira.Issue, error) {
	f.Calls = append(f.Calls, "SearchIssues")
	if !f.LoggedIn {
		return nil, ErrNotLoggedIn
	}
	m := query.FindStringSubmatch(jql)
	if m == nil {
		return nil, fmt.Errorf("jiratest: unsupported query %q", jql)
	}
	project, version := m[1], m[2]
	var issues []jira.Issue
	for _, issue := range f.Issues[project] {
		if len(issues) == maxResults {
			break
		}
		if slices.ContainsFunc(issue.FixVersions, func(v jira.Version) bool { return strings.EqualFold(v.Name, version) }) {
			issues = append(issues, jira.Issue{Key: issue.Key, FixVersions: slices.Clone(issue.FixVersions)})
		}
	}
	return issues, nil
}

// UpdateIssueFixVersions fails with UpdateErr when set.
func (f *FakeClient) UpdateIssueFixVersions(ctx context.Context, issueKey string, versionIDs []string) error {
	f.Calls = append(f.Calls, "UpdateIssueFixVersions")
	if !f.LoggedIn {
		return ErrNotLoggedIn
	}
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if f.IgnoreUpdates {
		return nil
	}
	for project, issues := range f.Issues {
		for _, issue := range issues {
			if issue.Key != issueKey {
				continue
			}
			var fixVersions []jira.Version
			for _, id := range versionIDs {
				v, ok := f.versionByID(project, id)
				if !ok {
					return fmt.Errorf("jiratest: no version %q in %s", id, project)
				}
				fixVersions = append(fixVersions, v)
			}
			issue.FixVersions = fixVersions
			return nil
		}
	}
	return fmt.Errorf("jiratest: no issue %q", issueKey)
}

func (f *FakeClient) versionByID(project, id string) (jira.Version, bool) {
	for _, v := range f.Versions[project] {
		if v.ID == id {
			return v, true
		}
	}
	return jira.Version{}, false
}
