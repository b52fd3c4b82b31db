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

	"github.com/croche/releasekit/internal/sprint"
	"github.com/urfave/cli/v3"
)

func sprintCommand() *cli.Command {
	return &cli.Command{
		Name:      "sprint",
		Usage:     "computes sprint versions",
		UsageText: "releasekit sprint <next|range> [arguments]",
		Description: `Sprint versions have the form YYYY-Qn.m or YYYY-Qn.m.p, where n is the
quarter, m the section of the quarter and p the patch number. Each quarter has
four sections.`,
		Commands: []*cli.Command{
			{
				Name:      "next",
				Usage:     "prints the sprint version after the given one",
				UsageText: "releasekit sprint next <version> [--patch]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "patch",
						Usage: "increment the patch number instead of moving to the next section",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					current := cmd.Args().First()
					if current == "" {
						return fmt.Errorf("%w: sprint version", errMissingArgument)
					}
					next, err := sprint.NextGenerator{IncrementPatch: cmd.Bool("patch")}.Next(current)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, next)
					return nil
				},
			},
			{
				Name:      "range",
				Usage:     "prints the sprint versions after from, up to and including to",
				UsageText: "releasekit sprint range <from> <to>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("%w: from and to sprint versions", errMissingArgument)
					}
					from, err := sprint.Parse(cmd.Args().Get(0))
					if err != nil {
						return err
					}
					to, err := sprint.Parse(cmd.Args().Get(1))
					if err != nil {
						return err
					}
					versions, err := from.VersionsTo(to)
					if err != nil {
						return err
					}
					for _, v := range versions {
						fmt.Fprintln(cmd.Root().Writer, v)
					}
					return nil
				},
			},
		},
	}
}
