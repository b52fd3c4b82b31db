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

// Package dbupgrade builds per sprint database upgrade scripts from SQL files
// named after sprint versions.
package dbupgrade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	liberrors "github.com/croche/releasekit/internal/errors"
	"github.com/croche/releasekit/internal/filesystem"
	"github.com/croche/releasekit/internal/merge"
	"github.com/croche/releasekit/internal/sprint"
)

const (
	defaultAllInOneFile = "upgrade-all.sql"
	defaultWWWFile      = "upgrade-www.sql"
	defaultCoreFile     = "upgrade-core.sql"
)

var (
	errMissingSourceDir = errors.New("upgrade scripts source directory is required")
	errMissingTargetDir = errors.New("upgrade scripts target directory is required")
	// ErrUnclassified is returned for a script that is in neither a www nor
	// a core directory.
	ErrUnclassified = errors.New("script is not in a www or core directory")
)

// Options configures the upgrade script generation.
type Options struct {
	SourceDir string `yaml:"source_dir"`
	TargetDir string `yaml:"target_dir"`
	// Includes are doublestar patterns relative to SourceDir, all files by
	// default.
	Includes []string `yaml:"includes,omitempty"`
	// Excludes are doublestar patterns added to the default excludes and the
	// generated file names.
	Excludes  []string `yaml:"excludes,omitempty"`
	Separator string   `yaml:"separator,omitempty"`
	Encoding  string   `yaml:"encoding,omitempty"`
	// CoreDirs and WWWDirs classify a script by a substring of its path.
	CoreDirs     []string `yaml:"core_dirs,omitempty"`
	WWWDirs      []string `yaml:"www_dirs,omitempty"`
	AllInOneFile string   `yaml:"all_in_one_file,omitempty"`
	WWWFile      string   `yaml:"www_file,omitempty"`
	CoreFile     string   `yaml:"core_file,omitempty"`
}

func (o Options) withDefaults() Options {
	if len(o.Includes) == 0 {
		o.Includes = []string{"**/*"}
	}
	if o.AllInOneFile == "" {
		o.AllInOneFile = defaultAllInOneFile
	}
	if o.WWWFile == "" {
		o.WWWFile = defaultWWWFile
	}
	if o.CoreFile == "" {
		o.CoreFile = defaultCoreFile
	}
	return o
}

// Validate reports configuration errors.
func (o Options) Validate() error {
	if o.SourceDir == "" {
		return errMissingSourceDir
	}
	if o.TargetDir == "" {
		return errMissingTargetDir
	}
	if err := merge.ValidatePatterns(o.Includes); err != nil {
		return err
	}
	return merge.ValidatePatterns(o.Excludes)
}

// Sprint holds the scripts of one sprint.
type Sprint struct {
	Version  sprint.Version
	AllInOne []string
	WWW      []string
	Core     []string
}

// Run generates the upgrade scripts of every sprint found below
// opts.SourceDir and returns the sprints in version order.
func Run(ctx context.Context, opts Options) ([]*Sprint, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	sprints, err := collect(opts)
	if err != nil {
		return nil, err
	}
	for _, s := range sprints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeSprint(ctx, opts, s); err != nil {
			return nil, fmt.Errorf("creating upgrade scripts for sprint %s: %w", s.Version, err)
		}
	}
	return sprints, nil
}

func collect(opts Options) ([]*Sprint, error) {
	slog.Info("scanning for db upgrade scripts", "dir", opts.SourceDir)
	excludes := slices.Concat(merge.DefaultExcludes, []string{opts.AllInOneFile, opts.WWWFile, opts.CoreFile}, opts.Excludes)
	scanner := merge.Scanner{
		Include: func(rel string) bool {
			for _, p := range opts.Includes {
				if ok, _ := doublestar.Match(p, rel); ok {
					return true
				}
			}
			return false
		},
		Excludes: excludes,
	}
	files, err := scanner.Scan(opts.SourceDir)
	if err != nil {
		return nil, liberrors.IO(err, "scanning %s", opts.SourceDir)
	}
	slog.Info("found upgrade scripts", "dir", opts.SourceDir, "count", len(files))

	byVersion := make(map[sprint.Version]*Sprint)
	for _, file := range files {
		name := filepath.Base(file)
		v, err := sprint.Parse(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil {
			slog.Warn("skipping file as it does not match a sprint version", "path", file, "error", err)
			continue
		}
		s, ok := byVersion[v]
		if !ok {
			s = &Sprint{Version: v}
			byVersion[v] = s
		}
		s.AllInOne = append(s.AllInOne, file)
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, liberrors.IO(err, "resolving %s", file)
		}
		switch {
		case containsAny(abs, opts.WWWDirs):
			s.WWW = append(s.WWW, file)
		case containsAny(abs, opts.CoreDirs):
			s.Core = append(s.Core, file)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnclassified, abs)
		}
	}

	sprints := make([]*Sprint, 0, len(byVersion))
	for _, s := range byVersion {
		sprints = append(sprints, s)
	}
	slices.SortFunc(sprints, func(a, b *Sprint) int {
		return a.Version.Compare(b.Version)
	})
	return sprints, nil
}

func writeSprint(ctx context.Context, opts Options, s *Sprint) error {
	dir := filepath.Join(opts.TargetDir, s.Version.String())
	if err := filesystem.CleanDir(dir); err != nil {
		return liberrors.IO(err, "cleaning %s", dir)
	}
	for _, out := range []struct {
		name  string
		files []string
	}{
		{opts.AllInOneFile, s.AllInOne},
		{opts.WWWFile, s.WWW},
		{opts.CoreFile, s.Core},
	} {
		target := filepath.Join(dir, out.name)
		slog.Info("writing upgrade script", "target", target, "count", len(out.files))
		if err := merge.WriteFiles(ctx, target, out.files, opts.Separator, opts.Encoding); err != nil {
			return err
		}
	}
	for _, file := range s.AllInOne {
		module := filepath.Base(filepath.Dir(filepath.Dir(file)))
		dest := filepath.Join(dir, module+".sql")
		if err := filesystem.CopyFile(file, dest); err != nil {
			return liberrors.IO(err, "copying %s to %s", file, dest)
		}
	}
	return nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
