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
	"errors"
	"fmt"
	"strings"

	"github.com/croche/releasekit/internal/sprint"
	"github.com/croche/releasekit/internal/version"
)

const (
	snapshotSuffix = "-SNAPSHOT"

	defaultMaxIssuesToUpdate = 100
)

// VersionType selects how the next version is computed.
type VersionType int

const (
	// TypeRegex rewrites a group of NextRegex.
	TypeRegex VersionType = iota
	// TypeSprint computes the next sprint version.
	TypeSprint
	// TypeTwoDigit increments the second of two numbers.
	TypeTwoDigit
	// TypeThreeDigit increments the third of three numbers.
	TypeThreeDigit
	// TypeThreeDigitBranch increments the third number on a branch and the
	// second one on trunk.
	TypeThreeDigitBranch
)

var versionTypes = []struct {
	typ   VersionType
	alias string
	name  string
}{
	{TypeRegex, "regex", "regex"},
	{TypeSprint, "sprint_y3d", "sprint_y3d"},
	{TypeTwoDigit, "2d", "v_2d"},
	{TypeThreeDigit, "3d", "v_3d"},
	{TypeThreeDigitBranch, "3db", "v_3d_branch_aware"},
}

// ErrInvalidVersionType is returned for an unknown version type.
var ErrInvalidVersionType = errors.New("invalid version type")

// ParseVersionType parses a version type by its alias or name, ignoring
// case. An empty string is TypeRegex.
func ParseVersionType(s string) (VersionType, error) {
	if s == "" {
		return TypeRegex, nil
	}
	for _, vt := range versionTypes {
		if strings.EqualFold(s, vt.alias) || strings.EqualFold(s, vt.name) {
			return vt.typ, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidVersionType, s)
}

// String returns the alias of t.
func (t VersionType) String() string {
	for _, vt := range versionTypes {
		if vt.typ == t {
			return vt.alias
		}
	}
	return fmt.Sprintf("VersionType(%d)", int(t))
}

// VersionSpec describes the JIRA versions matching a project version.
type VersionSpec struct {
	ProjectKey string `yaml:"project_key"`
	// Prefix is prepended to JIRA version names. "#space" stands for a
	// space.
	Prefix string `yaml:"prefix,omitempty"`
	// ExistingVersion is the project version being released.
	ExistingVersion string `yaml:"existing_version,omitempty"`
	Type            string `yaml:"type,omitempty"`
	NextRegex       string `yaml:"next_regex,omitempty"`
	// NextGroup defaults to 1.
	NextGroup       int    `yaml:"next_group,omitempty"`
	NextReplacement string `yaml:"next_replacement,omitempty"`
	// MoveIssues moves the issues of the released version to the next
	// version. Nil means true.
	MoveIssues *bool `yaml:"move_issues,omitempty"`
	// MaxIssuesToUpdate defaults to 100.
	MaxIssuesToUpdate int `yaml:"max_issues_to_update,omitempty"`
}

// Validate reports configuration errors.
func (s *VersionSpec) Validate() error {
	if s.ProjectKey == "" {
		return errors.New("jira project key is required")
	}
	_, err := ParseVersionType(s.Type)
	return err
}

func (s *VersionSpec) prefix() string {
	return strings.ReplaceAll(s.Prefix, "#space", " ")
}

func (s *VersionSpec) moveIssues() bool {
	return s.MoveIssues == nil || *s.MoveIssues
}

func (s *VersionSpec) maxIssuesToUpdate() int {
	if s.MaxIssuesToUpdate <= 0 {
		return defaultMaxIssuesToUpdate
	}
	return s.MaxIssuesToUpdate
}

// BranchAware reports whether the next version of s depends on the build
// running on a release branch.
func (s *VersionSpec) BranchAware() bool {
	typ, err := ParseVersionType(s.Type)
	return err == nil && (typ == TypeSprint || typ == TypeThreeDigitBranch)
}

// CurrentVersion returns the JIRA name of the existing version.
func (s *VersionSpec) CurrentVersion() string {
	return s.prefix() + strings.ReplaceAll(s.ExistingVersion, snapshotSuffix, "")
}

// NextVersion returns the JIRA name of the version after the existing one.
// ok is false when s has a regex type and no regex.
func (s *VersionSpec) NextVersion(branch bool) (name string, ok bool, err error) {
	gen, err := s.generator(branch)
	if err != nil || gen == nil {
		return "", false, err
	}
	next, err := gen.Next(s.ExistingVersion)
	if err != nil {
		return "", false, fmt.Errorf("computing next version of %q: %w", s.ExistingVersion, err)
	}
	return s.prefix() + strings.ReplaceAll(next, snapshotSuffix, ""), true, nil
}

func (s *VersionSpec) generator(branch bool) (version.NextGenerator, error) {
	typ, err := ParseVersionType(s.Type)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeRegex:
		if s.NextRegex == "" {
			return nil, nil
		}
		group := s.NextGroup
		if group == 0 {
			group = 1
		}
		return version.NewRegexGenerator(s.NextRegex, group, s.NextReplacement)
	case TypeSprint:
		return sprint.NextGenerator{IncrementPatch: branch}, nil
	case TypeTwoDigit:
		return version.NewTwoDigitGenerator(), nil
	case TypeThreeDigit:
		return version.NewThreeDigitGenerator(), nil
	case TypeThreeDigitBranch:
		return version.NewThreeDigitBranchGenerator(branch), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidVersionType, typ)
}
