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

// Package merge concatenates the files found below a set of directories into
// a single file.
package merge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/croche/releasekit/internal/charset"
	liberrors "github.com/croche/releasekit/internal/errors"
)

var errMissingTarget = errors.New("merge target file is required")

// Spec configures one merge.
type Spec struct {
	// Target is the file written by the merge. It is recreated on every run.
	Target string `yaml:"target"`
	// SourceDirs are scanned recursively in order.
	SourceDirs []string `yaml:"source_dirs"`
	// Orderings group files by a substring of their name. Files are written
	// group by group, in the order given, followed by the files matching no
	// ordering.
	Orderings []string `yaml:"orderings,omitempty"`
	// Includes select files whose name contains any of the values. No
	// includes select every file.
	Includes []string `yaml:"includes,omitempty"`
	// Excludes are doublestar patterns added to DefaultExcludes.
	Excludes []string `yaml:"excludes,omitempty"`
	// Separator is written before each file. See ExpandSeparator.
	Separator string `yaml:"separator,omitempty"`
	// Encoding of the source and target files, UTF-8 by default.
	Encoding string `yaml:"encoding,omitempty"`
	// DuplicatesAllowed merges a file once per source directory that reaches
	// it instead of once overall.
	DuplicatesAllowed bool `yaml:"duplicates_allowed,omitempty"`
}

// Validate reports configuration errors.
func (s *Spec) Validate() error {
	if s.Target == "" {
		return errMissingTarget
	}
	if len(s.SourceDirs) == 0 {
		return fmt.Errorf("merge %s: at least one source directory is required", s.Target)
	}
	if err := ValidatePatterns(s.Excludes); err != nil {
		return fmt.Errorf("merge %s: %w", s.Target, err)
	}
	if _, err := charset.Lookup(s.Encoding); err != nil {
		return fmt.Errorf("merge %s: %w", s.Target, err)
	}
	return nil
}

// Result describes a completed merge.
type Result struct {
	Target string
	// Files lists the merged files in the order they were written.
	Files []string
}

// bucket holds the files whose name contains key. The default bucket has an
// empty key.
type bucket struct {
	key   string
	files []string
}

// Run performs the merge described by spec.
func Run(ctx context.Context, spec *Spec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	target, err := filepath.Abs(spec.Target)
	if err != nil {
		return nil, liberrors.IO(err, "resolving %s", spec.Target)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, liberrors.IO(err, "removing %s", target)
	}

	buckets := buildBuckets(spec.Orderings)
	scanner := Scanner{
		Include:  nameContains(spec.Includes),
		Excludes: append(append([]string{}, DefaultExcludes...), spec.Excludes...),
	}
	seen := make(map[string]bool)
	for _, dir := range spec.SourceDirs {
		if !usableSourceDir(dir) {
			continue
		}
		slog.Info("scanning source directory for files to merge", "dir", dir)
		files, err := scanner.Scan(dir)
		if err != nil {
			slog.Warn("source directory can not be read, it will not be scanned", "dir", dir, "error", err)
			continue
		}
		for _, file := range files {
			abs, err := filepath.Abs(file)
			if err != nil {
				return nil, liberrors.IO(err, "resolving %s", file)
			}
			if abs == target {
				continue
			}
			if !spec.DuplicatesAllowed {
				if seen[abs] {
					slog.Debug("file already selected, skipping duplicate", "path", abs)
					continue
				}
				seen[abs] = true
			}
			assign(buckets, file)
		}
	}

	var ordered []string
	for _, b := range buckets {
		if len(b.files) > 0 && b.key != "" {
			slog.Info("appending files matching ordering", "ordering", b.key, "count", len(b.files))
		}
		ordered = append(ordered, b.files...)
	}
	if err := WriteFiles(ctx, target, ordered, spec.Separator, spec.Encoding); err != nil {
		return nil, err
	}
	slog.Info("finished merging files", "count", len(ordered), "target", target)
	return &Result{Target: target, Files: ordered}, nil
}

// RunAll runs every spec. A failing spec does not stop the others; the
// returned error joins all failures.
func RunAll(ctx context.Context, specs []*Spec) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := Run(ctx, spec)
		if err != nil {
			slog.Error("merge failed", "target", spec.Target, "error", err)
			errs = append(errs, fmt.Errorf("merge %s: %w", spec.Target, err))
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

func buildBuckets(orderings []string) []*bucket {
	var buckets []*bucket
	for _, o := range orderings {
		key := strings.TrimSpace(o)
		if key == "" {
			slog.Warn("empty ordering name will be ignored", "ordering", o)
			continue
		}
		buckets = append(buckets, &bucket{key: key})
	}
	return append(buckets, &bucket{})
}

// assign adds file to the first bucket whose key its name contains, falling
// back to the default bucket, which is always last.
func assign(buckets []*bucket, file string) {
	name := filepath.Base(file)
	for _, b := range buckets {
		if b.key == "" || strings.Contains(name, b.key) {
			b.files = append(b.files, file)
			return
		}
	}
}

func nameContains(includes []string) func(string) bool {
	if len(includes) == 0 {
		return nil
	}
	return func(rel string) bool {
		name := filepath.Base(filepath.FromSlash(rel))
		for _, include := range includes {
			if strings.Contains(name, include) {
				return true
			}
		}
		return false
	}
}

func usableSourceDir(dir string) bool {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Warn("source directory does not exist, it will not be scanned", "dir", dir)
		return false
	case err != nil:
		slog.Warn("source directory can not be read, it will not be scanned", "dir", dir, "error", err)
		return false
	case !info.IsDir():
		slog.Warn("source directory is not a directory, it will not be scanned", "dir", dir)
		return false
	}
	return true
}

// WriteFiles writes files to target, truncating it first, each preceded by
// the expanded separator. Files are decoded from and the target encoded in
// the named encoding.
func WriteFiles(ctx context.Context, target string, files []string, separator, encoding string) (err error) {
	out, err := os.Create(target)
	if err != nil {
		return liberrors.IO(err, "creating %s", target)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = liberrors.IO(cerr, "closing %s", target)
		}
	}()
	buf := bufio.NewWriter(out)
	w, err := charset.NewWriter(encoding, buf)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		slog.Debug("appending file", "path", file, "target", target)
		if sep := ExpandSeparator(separator, file); sep != "" {
			if _, err := io.WriteString(w, sep); err != nil {
				return liberrors.IO(err, "writing separator to %s", target)
			}
		}
		if err := appendFile(w, file, encoding); err != nil {
			return liberrors.IO(err, "appending %s to %s", file, target)
		}
	}
	if err := w.Close(); err != nil {
		return liberrors.IO(err, "writing %s", target)
	}
	if err := buf.Flush(); err != nil {
		return liberrors.IO(err, "writing %s", target)
	}
	return nil
}

func appendFile(w io.Writer, file, encoding string) error {
	in, err := os.Open(file)
	if err != nil {
		return err
	}
	defer in.Close()
	r, err := charset.NewReader(encoding, in)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

// ExpandSeparator returns the separator written before file. Surrounding
// whitespace and raw line breaks and tabs are removed from template, then
// #{file.name}, #{parent.name} and #{grandparent.name} are replaced and the
// escapes \n and \t are expanded.
func ExpandSeparator(template, file string) string {
	s := strings.TrimSpace(template)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(s)
	parent := filepath.Dir(file)
	grandparent := filepath.Dir(parent)
	return strings.NewReplacer(
		"#{file.name}", filepath.Base(file),
		"#{parent.name}", dirName(parent),
		"#{grandparent.name}", dirName(grandparent),
		`\n`, "\n",
		`\t`, "\t",
	).Replace(s)
}

func dirName(dir string) string {
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return filepath.Base(dir)
}
