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

package version

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// TypeRegex computes the development version with the configured regex.
	TypeRegex = "regex"
	// TypeThreeDigitBranch computes the development version of a three
	// number version depending on whether the build is on a branch.
	TypeThreeDigitBranch = "3db"

	threeDigitRegex = `.*(\d+)[^0-9]+(\d+)[^0-9]+(\d+).*`
	twoDigitRegex   = `.*(\d+)[^0-9]+(\d+).*`
)

// ErrInvalidBranchVersion is returned when a branch-aware development
// version is computed for a version that does not belong to the branch kind.
var ErrInvalidBranchVersion = errors.New("version does not fit branch")

// Config holds the rules for the release and development versions.
//
// Zero values take the defaults: group 1, an Increment development
// replacement, an empty release replacement and the regex development type.
type Config struct {
	DevRegex           string `yaml:"dev_regex,omitempty"`
	DevGroup           int    `yaml:"dev_group,omitempty"`
	DevReplacement     string `yaml:"dev_replacement,omitempty"`
	DevType            string `yaml:"dev_type,omitempty"`
	ReleaseRegex       string `yaml:"release_regex,omitempty"`
	ReleaseGroup       int    `yaml:"release_group,omitempty"`
	ReleaseReplacement string `yaml:"release_replacement,omitempty"`
}

// WithDefaults returns a copy of c with defaults filled in and regexes
// trimmed.
func (c Config) WithDefaults() Config {
	c.DevRegex = strings.TrimSpace(c.DevRegex)
	c.ReleaseRegex = strings.TrimSpace(c.ReleaseRegex)
	if c.DevGroup == 0 {
		c.DevGroup = 1
	}
	if c.ReleaseGroup == 0 {
		c.ReleaseGroup = 1
	}
	if strings.TrimSpace(c.DevReplacement) == "" {
		c.DevReplacement = Increment
	}
	if c.DevType == "" {
		c.DevType = TypeRegex
	}
	return c
}

// BranchAware reports whether the development version depends on the build
// running on a release branch.
func (c Config) BranchAware() bool {
	return strings.EqualFold(c.WithDefaults().DevType, TypeThreeDigitBranch)
}

// Validate reports configuration errors that do not depend on a version.
func (c Config) Validate() error {
	c = c.WithDefaults()
	if c.DevGroup < 1 {
		return fmt.Errorf("%w: dev group %d must be >= 1", ErrInvalidGroupIndex, c.DevGroup)
	}
	if c.ReleaseGroup < 1 {
		return fmt.Errorf("%w: release group %d must be >= 1", ErrInvalidGroupIndex, c.ReleaseGroup)
	}
	switch strings.ToLower(c.DevType) {
	case TypeRegex, TypeThreeDigitBranch:
	default:
		return fmt.Errorf("unknown dev version type %q", c.DevType)
	}
	return nil
}

// Release returns the release version of current. It returns "" when no
// release regex is configured.
func Release(cfg Config, current string) (string, error) {
	cfg = cfg.WithDefaults()
	if cfg.ReleaseRegex == "" {
		return "", nil
	}
	if cfg.ReleaseGroup < 1 {
		return "", fmt.Errorf("%w: release group %d must be >= 1", ErrInvalidGroupIndex, cfg.ReleaseGroup)
	}
	return Transform(current, cfg.ReleaseRegex, cfg.ReleaseGroup, cfg.ReleaseReplacement)
}

// Development returns the next development version of current. It returns ""
// when no development regex is configured and the type is not branch aware.
// branch is only used by the branch-aware type.
func Development(cfg Config, current string, branch bool) (string, error) {
	cfg = cfg.WithDefaults()
	if cfg.BranchAware() {
		return branchDevelopment(cfg, current, branch)
	}
	if cfg.DevRegex == "" {
		return "", nil
	}
	if cfg.DevGroup < 1 {
		return "", fmt.Errorf("%w: dev group %d must be >= 1", ErrInvalidGroupIndex, cfg.DevGroup)
	}
	return Transform(current, cfg.DevRegex, cfg.DevGroup, cfg.DevReplacement)
}

// branchDevelopment increments the minor number on trunk and the patch
// number on a branch. Trunk versions must have a zero patch number and branch
// versions a non-zero one.
func branchDevelopment(cfg Config, current string, branch bool) (string, error) {
	regex := cfg.DevRegex
	if regex == "" {
		regex = threeDigitRegex
	}
	parts, err := Parts(current, regex)
	if err != nil {
		return "", err
	}
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q must have 3 numbers, got %d", ErrInvalidBranchVersion, current, len(parts))
	}
	group := 2
	if branch {
		if parts[2] == 0 {
			return "", fmt.Errorf("%w: branch version %q must have a non-zero patch number", ErrInvalidBranchVersion, current)
		}
		group = 3
	} else if parts[2] != 0 {
		return "", fmt.Errorf("%w: trunk version %q must have a zero patch number", ErrInvalidBranchVersion, current)
	}
	slog.Debug("computing branch aware development version", "version", current, "branch", branch, "group", group)
	return Transform(current, regex, group, Increment)
}
