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
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

const (
	issuesPerPage  = 30
	releaseDateFmt = "2006-01-02"
)

// Manager manages the versions of a single JIRA project.
type Manager struct {
	client     Client
	projectKey string
	versions   []Version
	now        func() time.Time
}

// NewManager lists the versions of the project and returns a manager for
// them.
func NewManager(ctx context.Context, client Client, projectKey string) (*Manager, error) {
	versions, err := client.ListVersions(ctx, projectKey)
	if err != nil {
		return nil, fmt.Errorf("listing versions of %s: %w", projectKey, err)
	}
	return &Manager{
		client:     client,
		projectKey: projectKey,
		versions:   versions,
		now:        time.Now,
	}, nil
}

// Find returns the version with the given name, ignoring case.
func (m *Manager) Find(name string) (Version, bool) {
	return findVersion(m.versions, name)
}

// OptionallyCreateVersion creates the named version unless it exists, and
// returns it.
func (m *Manager) OptionallyCreateVersion(ctx context.Context, name string) (Version, error) {
	if v, ok := m.Find(name); ok {
		slog.Debug("jira version already exists", "project", m.projectKey, "version", name)
		return v, nil
	}
	v, err := m.client.CreateVersion(ctx, m.projectKey, Version{Name: name})
	if err != nil {
		return Version{}, fmt.Errorf("creating version %q: %w", name, err)
	}
	slog.Info("created jira version", "project", m.projectKey, "version", v.Name)
	m.versions = append(m.versions, v)
	return v, nil
}

// ReleaseVersion releases the named version as of today, creating it first
// when needed. Releasing a released version only logs a warning.
func (m *Manager) ReleaseVersion(ctx context.Context, name string) (Version, error) {
	v, err := m.OptionallyCreateVersion(ctx, name)
	if err != nil {
		return Version{}, err
	}
	if v.Released {
		slog.Warn("jira version is already released", "project", m.projectKey, "version", v.Name)
		return v, nil
	}
	v.Released = true
	v.ReleaseDate = m.now().Format(releaseDateFmt)
	if err := m.client.ReleaseVersion(ctx, m.projectKey, v); err != nil {
		return Version{}, fmt.Errorf("releasing version %q: %w", name, err)
	}
	m.replace(v)
	slog.Info("released jira version", "project", m.projectKey, "version", v.Name, "date", v.ReleaseDate)
	return v, nil
}

func (m *Manager) replace(v Version) {
	for i := range m.versions {
		if strings.EqualFold(m.versions[i].Name, v.Name) {
			m.versions[i] = v
			return
		}
	}
}

// Release releases the current version of spec, creates the next one and
// moves the issues still assigned to the released version to it.
func (m *Manager) Release(ctx context.Context, spec *VersionSpec, branch bool) error {
	released, err := m.ReleaseVersion(ctx, spec.CurrentVersion())
	if err != nil {
		return err
	}
	nextName, ok, err := spec.NextVersion(branch)
	if err != nil {
		return err
	}
	if !ok {
		slog.Info("no next jira version configured", "project", m.projectKey)
		return nil
	}
	next, err := m.OptionallyCreateVersion(ctx, nextName)
	if err != nil {
		return err
	}
	if next.Released {
		slog.Warn("next jira version is already released, not moving issues", "project", m.projectKey, "version", next.Name)
		return nil
	}
	if !spec.moveIssues() {
		slog.Info("not moving issues", "project", m.projectKey, "from", released.Name, "to", next.Name)
		return nil
	}
	n, err := m.UpdateFixVersions(ctx, released, next, spec.maxIssuesToUpdate())
	if err != nil {
		return err
	}
	slog.Info("moved issues", "project", m.projectKey, "count", n, "from", released.Name, "to", next.Name)
	return nil
}

// UpdateFixVersions replaces released with next in the fix versions of at
// most max issues of released, and returns the number of issues processed.
// A failed update stops the process without failing it.
func (m *Manager) UpdateFixVersions(ctx context.Context, released, next Version, max int) (int, error) {
	jql := fmt.Sprintf("project='%s' and fixVersion='%s'", m.projectKey, released.Name)
	var (
		updated  int
		lastKeys string
	)
	for updated < max {
		issues, err := m.client.SearchIssues(ctx, jql, issuesPerPage)
		if err != nil {
			return updated, fmt.Errorf("searching issues of %q: %w", released.Name, err)
		}
		if len(issues) == 0 {
			break
		}
		keys := issueKeys(issues)
		if strings.EqualFold(keys, lastKeys) {
			slog.Warn("issues were not updated, check the permissions of the jira user", "issues", keys)
			break
		}
		lastKeys = keys
		for _, issue := range issues {
			if len(issue.FixVersions) == 0 {
				slog.Warn("issue has no fix versions", "issue", issue.Key)
				continue
			}
			ids := replaceVersion(issue.FixVersions, released.Name, next.ID)
			slog.Debug("updating fix versions", "issue", issue.Key, "versions", ids)
			if err := m.client.UpdateIssueFixVersions(ctx, issue.Key, ids); err != nil {
				slog.Warn("failed to update issue", "issue", issue.Key, "error", err)
				return updated, nil
			}
		}
		updated += len(issues)
	}
	return updated, nil
}

func issueKeys(issues []Issue) string {
	keys := make([]string, len(issues))
	for i, issue := range issues {
		keys[i] = issue.Key
	}
	return strings.Join(keys, ",")
}

// replaceVersion returns the ids of versions with the one named name
// replaced by id, without duplicates.
func replaceVersion(versions []Version, name, id string) []string {
	var ids []string
	for _, v := range versions {
		vid := v.ID
		if strings.EqualFold(v.Name, name) {
			vid = id
		}
		if !slices.Contains(ids, vid) {
			ids = append(ids, vid)
		}
	}
	return ids
}
