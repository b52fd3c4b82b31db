// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config defines the contract for the releasekit.yaml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/croche/releasekit/internal/dbupgrade"
	liberrors "github.com/croche/releasekit/internal/errors"
	"github.com/croche/releasekit/internal/jira"
	"github.com/croche/releasekit/internal/manifest"
	"github.com/croche/releasekit/internal/merge"
	"github.com/croche/releasekit/internal/version"
	"github.com/croche/releasekit/internal/yaml"
)

// DefaultTrunkBranches are the branch names that are not release branches.
var DefaultTrunkBranches = []string{"main", "master", "trunk"}

// Config is the releasekit.yaml file. Every section is optional; a command
// fails when the section it needs is missing.
type Config struct {
	// ProjectVersion is the current version of the project, such as
	// 1.2.0-SNAPSHOT.
	ProjectVersion string `yaml:"project_version,omitempty"`

	Version        version.Config        `yaml:"version,omitempty"`
	Merges         []*merge.Spec         `yaml:"merges,omitempty"`
	UpgradeScripts *dbupgrade.Options    `yaml:"upgrade_scripts,omitempty"`
	Manifest       *manifest.CopyOptions `yaml:"manifest,omitempty"`
	Jira           *Jira                 `yaml:"jira,omitempty"`
}

// Jira configures the JIRA server and the versions managed on it.
type Jira struct {
	// URL is the issue management URL of the project, such as
	// https://jira.example.com/browse/PROJ.
	URL string `yaml:"url"`
	// User and Password default to the JIRA_USER and JIRA_PASSWORD
	// variables of the build context.
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	// DotEnv lists .env files read before resolving credentials.
	DotEnv []string `yaml:"dot_env,omitempty"`
	// SCMConnection is the SCM URL of the project. A URL containing
	// "branches" marks a release branch.
	SCMConnection string `yaml:"scm_connection,omitempty"`
	// TrunkBranches are the git branches that are not release branches,
	// DefaultTrunkBranches when empty.
	TrunkBranches []string            `yaml:"trunk_branches,omitempty"`
	Versions      []*jira.VersionSpec `yaml:"versions,omitempty"`
}

// Load reads and validates the configuration file at path. Paths in the
// file are resolved against its directory.
func Load(path string) (*Config, error) {
	cfg, err := yaml.Read[Config](path)
	if pathErr := (*fs.PathError)(nil); errors.As(err, &pathErr) {
		return nil, liberrors.IO(err, "loading configuration")
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Write saves cfg to path.
func Write(path string, cfg *Config) error {
	return yaml.Write(path, cfg)
}

// Validate reports configuration errors in every section.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Version.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("version: %w", err))
	}
	for i, m := range c.Merges {
		if m == nil {
			errs = append(errs, fmt.Errorf("merges[%d] is empty", i))
			continue
		}
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("merges[%d]: %w", i, err))
		}
	}
	if c.UpgradeScripts != nil {
		if err := c.UpgradeScripts.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("upgrade_scripts: %w", err))
		}
	}
	if c.Manifest != nil {
		if err := c.Manifest.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("manifest: %w", err))
		}
	}
	if c.Jira != nil {
		if err := c.Jira.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("jira: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Validate reports configuration errors.
func (j *Jira) Validate() error {
	if j.URL == "" {
		return errors.New("url is required")
	}
	for i, v := range j.Versions {
		if v == nil {
			return fmt.Errorf("versions[%d] is empty", i)
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("versions[%d]: %w", i, err)
		}
	}
	return nil
}

// IsTrunk reports whether branch is a trunk branch.
func (j *Jira) IsTrunk(branch string) bool {
	trunks := j.TrunkBranches
	if len(trunks) == 0 {
		trunks = DefaultTrunkBranches
	}
	return slices.Contains(trunks, branch)
}

func (c *Config) resolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	for _, m := range c.Merges {
		if m == nil {
			continue
		}
		resolve(&m.Target)
		for i := range m.SourceDirs {
			resolve(&m.SourceDirs[i])
		}
	}
	if u := c.UpgradeScripts; u != nil {
		resolve(&u.SourceDir)
		resolve(&u.TargetDir)
	}
	if m := c.Manifest; m != nil {
		resolve(&m.Source)
		resolve(&m.TargetDir)
	}
	if j := c.Jira; j != nil {
		for i := range j.DotEnv {
			resolve(&j.DotEnv[i])
		}
	}
}
