// Copyright 2024 Google LLC
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

// Package gitrepo provides operations on git repos.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const branchesMarker = "branches"

// ErrDetachedHead is returned by Branch when HEAD points at a commit rather
// than a branch.
var ErrDetachedHead = errors.New("HEAD is detached")

// Repo represents a git repository.
type Repo struct {
	Dir  string
	repo *git.Repository
}

// Open provides access to the Git repository containing dirpath.
func Open(ctx context.Context, dirpath string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dirpath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	return &Repo{
		Dir:  dirpath,
		repo: repo,
	}, nil
}

// Branch returns the short name of the checked out branch.
func Branch(ctx context.Context, repo *Repo) (string, error) {
	head, err := repo.repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("%w: %s is at %s", ErrDetachedHead, repo.Dir, head.Hash())
	}
	return head.Name().Short(), nil
}

// RemoteURL returns the first URL of the named remote.
func RemoteURL(ctx context.Context, repo *Repo, name string) (string, error) {
	remote, err := repo.repo.Remote(name)
	if err != nil {
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no url", name)
	}
	return urls[0], nil
}

// IsReleaseBranch reports whether the project in dir is built from a
// release branch rather than trunk.
//
// A non-empty scmConnection decides alone: it is a release branch when it
// contains "branches". Otherwise the git repository containing dir is
// inspected: an origin URL containing "branches" or a checked out branch
// for which isTrunk is false marks a release branch. A directory outside any
// repository, a detached HEAD and a repository without commits are trunk.
func IsReleaseBranch(ctx context.Context, dir, scmConnection string, isTrunk func(branch string) bool) (bool, error) {
	if scmConnection != "" {
		return strings.Contains(scmConnection, branchesMarker), nil
	}
	repo, err := Open(ctx, dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		slog.Debug("not a git repository, assuming trunk", "dir", dir)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if url, err := RemoteURL(ctx, repo, git.DefaultRemoteName); err == nil && strings.Contains(url, branchesMarker) {
		return true, nil
	}
	branch, err := Branch(ctx, repo)
	switch {
	case errors.Is(err, ErrDetachedHead), errors.Is(err, plumbing.ErrReferenceNotFound):
		slog.Warn("no branch checked out, assuming trunk", "dir", dir, "err", err)
		return false, nil
	case err != nil:
		return false, err
	}
	slog.Debug("detected git branch", "branch", branch)
	return !isTrunk(branch), nil
}
