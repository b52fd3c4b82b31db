// Copyright 2025 Google LLC
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

// Package testhelper provides helper functions for tests.
// These are used across packages
package testhelper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// ReadmeFile is the local file path for the README.md file initialized in
	// the test repo.
	ReadmeFile = "README.md"

	// ReadmeContents is the contents of the [ReadmeFile] initialized in the
	// test repo.
	ReadmeContents = "# Empty Repo"

	// TestRemoteURL is the URL of the origin remote of the test repository.
	TestRemoteURL = "https://example.com/svn/project/trunk"
)

// WriteFiles creates files below root. The keys of files are slash separated
// paths relative to root and the values their contents.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// ReadFile returns the contents of path, failing the test if it can not be
// read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// SetupRepo initializes a git repository in dir with a single commit and an
// origin remote pointing at [TestRemoteURL], then checks out branch. An empty
// branch stays on the default branch.
func SetupRepo(t *testing.T, dir, branch string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{TestRemoteURL},
	}); err != nil {
		t.Fatal(err)
	}
	WriteFiles(t, dir, map[string]string{ReadmeFile: ReadmeContents})
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Add(ReadmeFile); err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Commit("initial version", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test Account",
			Email: "test@test-only.com",
			When:  time.Now(),
		},
	}); err != nil {
		t.Fatal(err)
	}
	if branch == "" {
		return
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}); err != nil {
		t.Fatal(err)
	}
}

// DetachHead checks out the commit at HEAD of the repository in dir, leaving
// no branch checked out.
func DetachHead(t *testing.T, dir string) {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatal(err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: head.Hash()}); err != nil {
		t.Fatal(err)
	}
}
