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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/croche/releasekit/internal/config"
	"github.com/croche/releasekit/internal/jira"
	"github.com/urfave/cli/v3"
)

const (
	jiraUserVariable     = "JIRA_USER"
	jiraPasswordVariable = "JIRA_PASSWORD"
	defaultDotEnv        = ".env"
)

var (
	errNoJira          = errors.New("no jira configured")
	errNoJiraVersions  = errors.New("no jira versions configured")
	errMissingJiraUser = errors.New("jira user and password are required")
)

// newJiraClient is replaced in tests.
var newJiraClient = func(baseURL string) jira.Client {
	return jira.NewRESTClient(baseURL, nil)
}

func jiraCommand() *cli.Command {
	projectFlag := &cli.StringFlag{
		Name:  "project",
		Usage: "key of the JIRA project to use (default first configured)",
	}
	return &cli.Command{
		Name:      "jira",
		Usage:     "creates and releases JIRA versions",
		UsageText: "releasekit jira <sync|release|release-multiple>",
		Description: `The jira commands manage the versions listed in the jira section of the
configuration. A version without existing_version uses project_version.

Credentials are read from the user and password of the jira section, then from
the JIRA_USER and JIRA_PASSWORD variables of the build context, the .env files
listed in dot_env or the environment.`,
		Commands: []*cli.Command{
			{
				Name:      "sync",
				Usage:     "creates the JIRA version of the project version",
				UsageText: "releasekit jira sync [--project key]",
				Flags:     []cli.Flag{projectFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withJira(ctx, cmd, func(ctx context.Context, client jira.Client, cfg *config.Config) error {
						spec, err := selectSpec(cfg, cmd.String("project"))
						if err != nil {
							return err
						}
						return jira.SyncVersion(ctx, client, spec)
					})
				},
			},
			{
				Name:      "release",
				Usage:     "releases the JIRA version and moves its open issues to the next version",
				UsageText: "releasekit jira release [--project key]",
				Description: `Release releases the JIRA version of the project version, creates the next
version and moves the issues still assigned to the released version to it.
For a snapshot project version the version is only created.`,
				Flags: []cli.Flag{projectFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withJira(ctx, cmd, func(ctx context.Context, client jira.Client, cfg *config.Config) error {
						spec, err := selectSpec(cfg, cmd.String("project"))
						if err != nil {
							return err
						}
						branch, err := releaseBranch(ctx, cfg, spec)
						if err != nil {
							return err
						}
						return jira.ReleaseVersion(ctx, client, spec, branch)
					})
				},
			},
			{
				Name:      "release-multiple",
				Usage:     "releases every configured JIRA version",
				UsageText: "releasekit jira release-multiple",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withJira(ctx, cmd, func(ctx context.Context, client jira.Client, cfg *config.Config) error {
						all, err := specs(cfg)
						if err != nil {
							return err
						}
						branch, err := releaseBranch(ctx, cfg, all...)
						if err != nil {
							return err
						}
						return jira.ReleaseMultiple(ctx, client, all, branch)
					})
				},
			},
		},
	}
}

// withJira runs fn in a JIRA session built from the configuration.
func withJira(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, client jira.Client, cfg *config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Jira == nil {
		return errNoJira
	}
	user, password, err := credentials(cmd, cfg.Jira)
	if err != nil {
		return err
	}
	baseURL, err := jira.DiscoverBaseURL(cfg.Jira.URL)
	if err != nil {
		return err
	}
	client := newJiraClient(baseURL)
	return jira.WithSession(ctx, client, user, password, func(ctx context.Context) error {
		return fn(ctx, client, cfg)
	})
}

// releaseBranch detects the release branch only when one of specs needs it.
func releaseBranch(ctx context.Context, cfg *config.Config, specs ...*jira.VersionSpec) (bool, error) {
	if !slices.ContainsFunc(specs, (*jira.VersionSpec).BranchAware) {
		return false, nil
	}
	return detectReleaseBranch(ctx, cfg)
}

func credentials(cmd *cli.Command, j *config.Jira) (user, password string, err error) {
	bctx, err := loadContext(cmd)
	if err != nil {
		return "", "", err
	}
	dotEnv := j.DotEnv
	if len(dotEnv) == 0 {
		dotEnv = []string{defaultDotEnv}
	}
	if err := bctx.LoadDotEnv(dotEnv...); err != nil {
		return "", "", err
	}
	user, password = j.User, j.Password
	if user == "" {
		user, _ = bctx.Lookup(jiraUserVariable)
	}
	if password == "" {
		password, _ = bctx.Lookup(jiraPasswordVariable)
	}
	if user == "" || password == "" {
		return "", "", fmt.Errorf("%w: set them in the jira section, %s or %s", errMissingJiraUser, jiraUserVariable, jiraPasswordVariable)
	}
	return user, password, nil
}

// specs returns the configured versions with existing_version defaulted to
// the project version.
func specs(cfg *config.Config) ([]*jira.VersionSpec, error) {
	var out []*jira.VersionSpec
	for _, s := range cfg.Jira.Versions {
		spec := *s
		if spec.ExistingVersion == "" {
			spec.ExistingVersion = cfg.ProjectVersion
		}
		if spec.ExistingVersion == "" {
			return nil, fmt.Errorf("%w: existing_version of %s or project_version", errMissingArgument, spec.ProjectKey)
		}
		out = append(out, &spec)
	}
	return out, nil
}

func selectSpec(cfg *config.Config, projectKey string) (*jira.VersionSpec, error) {
	all, err := specs(cfg)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errNoJiraVersions
	}
	if projectKey == "" {
		return all[0], nil
	}
	for _, s := range all {
		if strings.EqualFold(s.ProjectKey, projectKey) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: no version for project %q", errNoJiraVersions, projectKey)
}
