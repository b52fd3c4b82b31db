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

// Package releasekit implements the releasekit command line.
package releasekit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/croche/releasekit/internal/buildctx"
	"github.com/croche/releasekit/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath  = "releasekit.yaml"
	defaultContextPath = ".releasekit/context.toml"
)

var errMissingArgument = errors.New("missing argument")

// Run executes the releasekit CLI with the given command line arguments.
func Run(ctx context.Context, arg ...string) error {
	cmd := newReleasekitCommand()
	slog.Info("releasekit", "arguments", arg)
	return cmd.Run(ctx, arg)
}

func newReleasekitCommand() *cli.Command {
	return &cli.Command{
		Name:      "releasekit",
		Usage:     "computes versions, merges scripts and manages JIRA versions of a release",
		UsageText: "releasekit [--config file] [--context file] [--verbose] <command> [arguments]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the releasekit configuration file",
				Value: defaultConfigPath,
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "path to the build context shared between commands",
				Value: defaultContextPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug messages",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			initCommand(),
			versionCommand(),
			sprintCommand(),
			mergeCommand(),
			dbUpgradeCommand(),
			manifestCommand(),
			jiraCommand(),
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

func loadContext(cmd *cli.Command) (*buildctx.Context, error) {
	return buildctx.Load(cmd.String("context"))
}

func saveContext(cmd *cli.Command, bctx *buildctx.Context) error {
	return bctx.Save(cmd.String("context"))
}
