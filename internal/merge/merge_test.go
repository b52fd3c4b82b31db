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
	"errors"
	"os"
	"path/filepath"
	"testing"

	liberrors "github.com/croche/releasekit/internal/errors"
	"github.com/croche/releasekit/internal/testhelper"
	"github.com/google/go-cmp/cmp"
)

func TestRun(t *testing.T) {
	for _, test := range []struct {
		name  string
		files map[string]string
		spec  Spec
		want  string
	}{
		{
			name: "scan order",
			files: map[string]string{
				"src/b.sql":      "b;",
				"src/a.sql":      "a;",
				"src/sub/c.sql":  "c;",
				"src/.gitignore": "x",
			},
			spec: Spec{SourceDirs: []string{"src"}},
			want: "a;b;c;",
		},
		{
			name: "orderings",
			files: map[string]string{
				"src/1-data.sql":   "data;",
				"src/2-schema.sql": "schema;",
				"src/3-other.sql":  "other;",
				"src/4-index.sql":  "index;",
			},
			spec: Spec{
				SourceDirs: []string{"src"},
				Orderings:  []string{"schema", " ", "index ", "data"},
			},
			want: "schema;index;data;other;",
		},
		{
			name: "includes and excludes",
			files: map[string]string{
				"src/a.sql":         "a;",
				"src/b.txt":         "b;",
				"src/skip/c.sql":    "c;",
				"src/keep/d.sql":    "d;",
				"src/keep/e.sql.bk": "e;",
			},
			spec: Spec{
				SourceDirs: []string{"src"},
				Includes:   []string{".sql"},
				Excludes:   []string{"skip", "**/*.bk"},
			},
			want: "a;d;",
		},
		{
			name: "separator",
			files: map[string]string{
				"db/core/2012-Q1.1.sql": "x;",
			},
			spec: Spec{
				SourceDirs: []string{"db"},
				Separator:  "\n\t-- #{grandparent.name}/#{parent.name}/#{file.name}\\n  ",
			},
			want: "-- db/core/2012-Q1.1.sql\nx;",
		},
		{
			name: "missing source dir",
			files: map[string]string{
				"src/a.sql": "a;",
			},
			spec: Spec{SourceDirs: []string{"missing", "src/a.sql", "src"}},
			want: "a;",
		},
		{
			name: "overlapping source dirs",
			files: map[string]string{
				"src/a.sql": "a;",
				"src/b.sql": "b;",
			},
			spec: Spec{SourceDirs: []string{"src", "src", "./src"}},
			want: "a;b;",
		},
		{
			name: "duplicates allowed",
			files: map[string]string{
				"src/a.sql": "a;",
				"src/b.sql": "b;",
			},
			spec: Spec{SourceDirs: []string{"src", "src"}, DuplicatesAllowed: true},
			want: "a;b;a;b;",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			testhelper.WriteFiles(t, dir, test.files)
			spec := test.spec
			spec.Target = filepath.Join("out", "merged.sql")
			if err := os.MkdirAll("out", 0755); err != nil {
				t.Fatal(err)
			}
			if _, err := Run(t.Context(), &spec); err != nil {
				t.Fatal(err)
			}
			got := testhelper.ReadFile(t, spec.Target)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_ExcludesTargetAndTruncates(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFiles(t, dir, map[string]string{
		"src/a.sql":      "a;",
		"src/merged.sql": "stale;",
	})
	spec := &Spec{
		Target:     filepath.Join(dir, "src", "merged.sql"),
		SourceDirs: []string{filepath.Join(dir, "src")},
	}
	for range 2 {
		result, err := Run(t.Context(), spec)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{filepath.Join(dir, "src", "a.sql")}, result.Files); diff != "" {
			t.Errorf("files mismatch (-want +got):\n%s", diff)
		}
	}
	if diff := cmp.Diff("a;", testhelper.ReadFile(t, spec.Target)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Encoding(t *testing.T) {
	dir := t.TempDir()
	latin1 := string([]byte{'c', 'a', 'f', 0xe9, ';'})
	testhelper.WriteFiles(t, dir, map[string]string{"src/a.sql": latin1})
	spec := &Spec{
		Target:     filepath.Join(dir, "out.sql"),
		SourceDirs: []string{filepath.Join(dir, "src")},
		Separator:  "-- #{file.name}\\n",
		Encoding:   "ISO-8859-1",
	}
	if _, err := Run(t.Context(), spec); err != nil {
		t.Fatal(err)
	}
	want := "-- a.sql\n" + latin1
	if diff := cmp.Diff(want, testhelper.ReadFile(t, spec.Target)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Error(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFiles(t, dir, map[string]string{"src/a.sql": "a;"})
	for _, test := range []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name: "missing target",
			spec: Spec{SourceDirs: []string{dir}},
		},
		{
			name: "no source dirs",
			spec: Spec{Target: filepath.Join(dir, "out.sql")},
		},
		{
			name: "bad encoding",
			spec: Spec{Target: filepath.Join(dir, "out.sql"), SourceDirs: []string{dir}, Encoding: "nope"},
		},
		{
			name: "bad exclude",
			spec: Spec{Target: filepath.Join(dir, "out.sql"), SourceDirs: []string{dir}, Excludes: []string{"[a"}},
		},
		{
			name:    "target directory missing",
			spec:    Spec{Target: filepath.Join(dir, "missing", "out.sql"), SourceDirs: []string{filepath.Join(dir, "src")}},
			wantErr: liberrors.ErrIO,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Run(t.Context(), &test.spec)
			if err == nil {
				t.Fatal("Run() expected error, got nil")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestRunAll_IndependentSpecs(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFiles(t, dir, map[string]string{"src/a.sql": "a;"})
	specs := []*Spec{
		{Target: filepath.Join(dir, "missing", "first.sql"), SourceDirs: []string{filepath.Join(dir, "src")}},
		{Target: filepath.Join(dir, "second.sql"), SourceDirs: []string{filepath.Join(dir, "src")}},
	}
	results, err := RunAll(t.Context(), specs)
	if !errors.Is(err, liberrors.ErrIO) {
		t.Errorf("RunAll() error = %v, want %v", err, liberrors.ErrIO)
	}
	if len(results) != 1 {
		t.Fatalf("RunAll() returned %d results, want 1", len(results))
	}
	if diff := cmp.Diff("a;", testhelper.ReadFile(t, specs[1].Target)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandSeparator(t *testing.T) {
	for _, test := range []struct {
		name     string
		template string
		file     string
		want     string
	}{
		{"empty", "", "a/b/c.sql", ""},
		{"blank", " \n\t ", "a/b/c.sql", ""},
		{"names", "#{grandparent.name}|#{parent.name}|#{file.name}", "a/b/c.sql", "a|b|c.sql"},
		{"no parents", "#{grandparent.name}|#{parent.name}|#{file.name}", "c.sql", "||c.sql"},
		{"escapes", "--\\t#{file.name}\\n", "c.sql", "--\tc.sql\n"},
		{"raw whitespace removed", "--\n\t#{file.name}\r\n", "c.sql", "--c.sql"},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := ExpandSeparator(test.template, filepath.FromSlash(test.file))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
