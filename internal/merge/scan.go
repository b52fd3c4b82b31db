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

package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are the version control and editor files never merged.
var DefaultExcludes = []string{
	"**/*~",
	"**/#*#",
	"**/.#*",
	"**/%*%",
	"**/._*",
	"**/CVS",
	"**/CVS/**",
	"**/.cvsignore",
	"**/RCS",
	"**/RCS/**",
	"**/SCCS",
	"**/SCCS/**",
	"**/vssver.scc",
	"**/.svn",
	"**/.svn/**",
	"**/.arch-ids",
	"**/.arch-ids/**",
	"**/.bzr",
	"**/.bzr/**",
	"**/.MySCMServerInfo",
	"**/.DS_Store",
	"**/.metadata",
	"**/.metadata/**",
	"**/.hg",
	"**/.hg/**",
	"**/.git",
	"**/.git/**",
	"**/.gitignore",
	"**/.gitattributes",
	"**/BitKeeper",
	"**/BitKeeper/**",
	"**/ChangeSet",
	"**/ChangeSet/**",
	"**/_darcs",
	"**/_darcs/**",
	"**/.darcsrepo",
	"**/.darcsrepo/**",
	"**/-darcs-backup*",
	"**/.darcs-temp-mail",
}

// Scanner finds the files below a directory. Files of a directory come
// first, sorted by name, followed by its subdirectories in name order.
type Scanner struct {
	// Include reports whether a file is selected, given its slash separated
	// path relative to the scanned root. A nil Include selects every file.
	Include func(rel string) bool
	// Excludes are doublestar patterns matched against the relative path of
	// files and directories. Patterns without a slash also match the base
	// name at any depth.
	Excludes []string
}

// ValidatePatterns returns an error for the first malformed pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// Scan returns the selected files below root. Subdirectories that can not be
// read are skipped with a warning.
func (s Scanner) Scan(root string) ([]string, error) {
	if err := ValidatePatterns(s.Excludes); err != nil {
		return nil, err
	}
	var files []string
	if err := s.scan(root, "", &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s Scanner) scan(root, rel string, files *[]string) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var subdirs []string
	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())
		if s.excluded(entryRel) {
			slog.Debug("excluded from scan", "path", filepath.Join(dir, entry.Name()))
			continue
		}
		if entry.IsDir() {
			subdirs = append(subdirs, entryRel)
			continue
		}
		p := filepath.Join(dir, entry.Name())
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if s.Include != nil && !s.Include(entryRel) {
			slog.Debug("file does not match includes", "path", p)
			continue
		}
		if !readable(p) {
			slog.Warn("file can not be read, skipping", "path", p)
			continue
		}
		*files = append(*files, p)
	}
	for _, sub := range subdirs {
		if err := s.scan(root, sub, files); err != nil {
			slog.Warn("directory can not be read, skipping", "dir", filepath.Join(root, filepath.FromSlash(sub)), "error", err)
		}
	}
	return nil
}

func (s Scanner) excluded(rel string) bool {
	base := path.Base(rel)
	for _, p := range s.Excludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

func readable(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
