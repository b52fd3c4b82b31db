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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/croche/releasekit/internal/config"
	"github.com/croche/releasekit/internal/filesystem"
	"github.com/croche/releasekit/internal/version"
	"github.com/urfave/cli/v3"
)

const defaultProjectVersion = "1.0.0-SNAPSHOT"

var errConfigExists = errors.New("configuration file already exists")

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "writes a starter configuration file",
		UsageText: "releasekit init [project-version] [--force]",
		Description: `Init writes a configuration whose version rules turn 1.1.0-SNAPSHOT into the
release version 1.1.0 and the development version 1.2.0-SNAPSHOT. The project
version defaults to 1.0.0-SNAPSHOT.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "overwrite an existing configuration file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
				return fmt.Errorf("%w: %s", errConfigExists, path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			projectVersion := cmd.Args().First()
			if projectVersion == "" {
				projectVersion = defaultProjectVersion
			}
			if err := filesystem.EnsureDir(filepath.Dir(path)); err != nil {
				return err
			}
			if err := config.Write(path, starterConfig(projectVersion)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.Root().Writer, path)
			return nil
		},
	}
}

func starterConfig(projectVersion string) *config.Config {
	return &config.Config{
		ProjectVersion: projectVersion,
		Version: version.Config{
			DevRegex:     `(\d+)\.(\d+)\.(\d+)(-SNAPSHOT)`,
			DevGroup:     2,
			ReleaseRegex: `(\d+\.\d+\.\d+)(-SNAPSHOT)`,
			ReleaseGroup: 2,
		},
	}
}
