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

// Package manifest copies an application manifest while substituting build
// properties, and derives the manifest version name and code.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/croche/releasekit/internal/charset"
	liberrors "github.com/croche/releasekit/internal/errors"
	"github.com/croche/releasekit/internal/filesystem"
)

var (
	// ErrMissingProperty is returned when a placeholder names a property
	// that is not defined.
	ErrMissingProperty = errors.New("missing property")
	// ErrTargetIsSource is returned when the target directory holds the
	// source template itself.
	ErrTargetIsSource = errors.New("manifest target is the source file")

	errMissingSource    = errors.New("manifest source file is required")
	errMissingTargetDir = errors.New("manifest target directory is required")

	placeholder = regexp.MustCompile(`\$\{([^}]*)\}`)
)

// Properties resolves property names to values.
type Properties interface {
	Lookup(name string) (string, bool)
}

// CopyOptions configures Copy.
type CopyOptions struct {
	Source    string `yaml:"source"`
	TargetDir string `yaml:"target_dir"`
	// Encoding of the source and target, UTF-8 by default.
	Encoding string `yaml:"encoding,omitempty"`
}

// Validate reports configuration errors.
func (o CopyOptions) Validate() error {
	if o.Source == "" {
		return errMissingSource
	}
	if o.TargetDir == "" {
		return errMissingTargetDir
	}
	_, err := charset.Lookup(o.Encoding)
	return err
}

// Copy copies opts.Source into opts.TargetDir, keeping its base name, and
// replaces every ${name} placeholder with the named property. It returns the
// path of the written file.
func Copy(opts CopyOptions, props Properties) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	target := filepath.Join(opts.TargetDir, filepath.Base(opts.Source))
	if sameFile(opts.Source, target) {
		return "", fmt.Errorf("%w: %s", ErrTargetIsSource, target)
	}
	in, err := os.Open(opts.Source)
	if err != nil {
		return "", liberrors.IO(err, "opening manifest %s", opts.Source)
	}
	defer in.Close()
	if err := filesystem.EnsureDir(opts.TargetDir); err != nil {
		return "", liberrors.IO(err, "creating target directory %s", opts.TargetDir)
	}
	slog.Info("copying manifest", "source", opts.Source, "target", target)
	if err := copyLines(in, target, opts.Encoding, props); err != nil {
		return "", err
	}
	return target, nil
}

// sameFile reports whether a and b name the same file, either by path or,
// when both exist, on disk.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

func copyLines(in io.Reader, target, encoding string, props Properties) (err error) {
	r, err := charset.NewReader(encoding, in)
	if err != nil {
		return err
	}
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
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line, err := Substitute(scanner.Text(), props)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", target, lineNum, err)
		}
		if _, err := io.WriteString(w, line+lineSeparator()); err != nil {
			return liberrors.IO(err, "writing %s", target)
		}
	}
	if err := scanner.Err(); err != nil {
		return liberrors.IO(err, "reading manifest")
	}
	if err := w.Close(); err != nil {
		return liberrors.IO(err, "writing %s", target)
	}
	if err := buf.Flush(); err != nil {
		return liberrors.IO(err, "writing %s", target)
	}
	return nil
}

// Substitute replaces every ${name} in line with the value of the named
// property.
func Substitute(line string, props Properties) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(line, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := props.Lookup(name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %q", ErrMissingProperty, missing)
	}
	return out, nil
}

func lineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
