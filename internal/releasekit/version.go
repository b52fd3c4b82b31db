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

package releasekit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/croche/releasekit/internal/config"
	"github.com/croche/releasekit/internal/gitrepo"
	"github.com/croche/releasekit/internal/version"
	"github.com/urfave/cli/v3"
)

const (
	releaseVersionProperty     = "releaseVersion"
	developmentVersionProperty = "developmentVersion"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:      "version",
		Usage:     "computes the release and next development versions",
		UsageText: "releasekit version [current-version] [--release-branch]",
		Description: `Version rewrites the current project version with the release and development
rules of the version section of the configuration. The current version defaults
to project_version.

The results are printed and stored in the build context as releaseVersion and
developmentVersion. A version whose rule is not configured is left out.

The branch-aware development type needs to know whether the build runs on a
release branch. Unless --release-branch is given, this is detected from the
scm_connection of the jira section or from the checked out git branch. A
detached HEAD counts as trunk.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "release-branch",
				Usage: "whether the build runs on a release branch (default detected)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			current := cmd.Args().First()
			if current == "" {
				current = cfg.ProjectVersion
			}
			if current == "" {
				return fmt.Errorf("%w: current version or project_version is required", errMissingArgument)
			}
			branch := cmd.Bool("release-branch")
			if !cmd.IsSet("release-branch") && cfg.Version.BranchAware() {
				if branch, err = detectReleaseBranch(ctx, cfg); err != nil {
					return err
				}
			}
			return runVersion(ctx, cmd, cfg.Version, current, branch)
		},
	}
}

func runVersion(ctx context.Context, cmd *cli.Command, cfg version.Config, current string, branch bool) error {
	release, err := version.Release(cfg, current)
	if err != nil {
		return fmt.Errorf("computing release version of %q: %w", current, err)
	}
	dev, err := version.Development(cfg, current, branch)
	if err != nil {
		return fmt.Errorf("computing development version of %q: %w", current, err)
	}
	bctx, err := loadContext(cmd)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	for _, p := range []struct{ name, value string }{
		{releaseVersionProperty, release},
		{developmentVersionProperty, dev},
	} {
		if p.value == "" {
			slog.Debug("version rule not configured", "property", p.name)
			continue
		}
		bctx.Set(p.name, p.value)
		fmt.Fprintf(w, "%s=%s\n", p.name, p.value)
	}
	return saveContext(cmd, bctx)
}

// detectReleaseBranch reports whether the working directory is on a release
// branch.
func detectReleaseBranch(ctx context.Context, cfg *config.Config) (bool, error) {
	j := cfg.Jira
	if j == nil {
		j = &config.Jira{}
	}
	return gitrepo.IsReleaseBranch(ctx, ".", j.SCMConnection, j.IsTrunk)
}
