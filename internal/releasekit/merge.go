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
	"log/slog"

	"github.com/croche/releasekit/internal/dbupgrade"
	"github.com/croche/releasekit/internal/merge"
	"github.com/urfave/cli/v3"
)

var (
	errNoMerges         = errors.New("no merges configured")
	errNoUpgradeScripts = errors.New("no upgrade_scripts configured")
)

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "concatenates source files into target files",
		UsageText: "releasekit merge",
		Description: `Merge runs every entry of the merges section of the configuration in order.
Each target is recreated from the files found in its source directories,
grouped by the orderings and preceded by the separator.

Merging continues after a failed entry; all failures are reported.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Merges) == 0 {
				return errNoMerges
			}
			results, err := merge.RunAll(ctx, cfg.Merges)
			for _, r := range results {
				fmt.Fprintf(cmd.Root().Writer, "%s: %d files\n", r.Target, len(r.Files))
			}
			return err
		},
	}
}

func dbUpgradeCommand() *cli.Command {
	return &cli.Command{
		Name:      "dbupgrade",
		Usage:     "creates per sprint database upgrade scripts",
		UsageText: "releasekit dbupgrade",
		Description: `Dbupgrade looks for sprint directories, such as 2013-Q1.2, below the source_dir
of the upgrade_scripts section. For every sprint it writes an all-in-one
script, a www script and a core script to a directory of target_dir named
after the sprint, and copies each script there under the name of its
grandparent directory.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.UpgradeScripts == nil {
				return errNoUpgradeScripts
			}
			sprints, err := dbupgrade.Run(ctx, *cfg.UpgradeScripts)
			if err != nil {
				return err
			}
			for _, s := range sprints {
				slog.Info("created upgrade scripts", "sprint", s.Version, "scripts", len(s.AllInOne))
				fmt.Fprintln(cmd.Root().Writer, s.Version)
			}
			return nil
		},
	}
}
