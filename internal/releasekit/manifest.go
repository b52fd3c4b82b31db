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
	"time"

	"github.com/croche/releasekit/internal/manifest"
	"github.com/urfave/cli/v3"
)

var errNoManifest = errors.New("no manifest configured")

// now is replaced in tests.
var now = time.Now

func manifestCommand() *cli.Command {
	return &cli.Command{
		Name:      "manifest",
		Usage:     "versions and filters an application manifest",
		UsageText: "releasekit manifest <version|copy>",
		Commands: []*cli.Command{
			{
				Name:      "version",
				Usage:     "computes the manifest version name and code",
				UsageText: "releasekit manifest version [project-version]",
				Description: `Version derives the manifest version name and code from the project version,
which defaults to project_version. CI builds append the BUILD_NUMBER property
or environment variable and local snapshot builds append the current time.
The results are stored in the build context as manifestVersionName and
manifestVersionCode.`,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					projectVersion := cmd.Args().First()
					if projectVersion == "" {
						cfg, err := loadConfig(cmd)
						if err != nil {
							return err
						}
						projectVersion = cfg.ProjectVersion
					}
					if projectVersion == "" {
						return fmt.Errorf("%w: project version", errMissingArgument)
					}
					bctx, err := loadContext(cmd)
					if err != nil {
						return err
					}
					v := manifest.NewVersion(projectVersion, bctx, now())
					bctx.Set(manifest.VersionNameProperty, v.Name)
					bctx.Set(manifest.VersionCodeProperty, v.Code)
					fmt.Fprintf(cmd.Root().Writer, "%s=%s\n%s=%s\n", manifest.VersionNameProperty, v.Name, manifest.VersionCodeProperty, v.Code)
					return saveContext(cmd, bctx)
				},
			},
			{
				Name:      "copy",
				Usage:     "copies the manifest template, replacing ${name} placeholders",
				UsageText: "releasekit manifest copy",
				Description: `Copy copies the source of the manifest section into its target_dir. Every
${name} placeholder is replaced with the build context property or the
environment variable called name. A placeholder without a value fails the copy.`,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					if cfg.Manifest == nil {
						return errNoManifest
					}
					bctx, err := loadContext(cmd)
					if err != nil {
						return err
					}
					target, err := manifest.Copy(*cfg.Manifest, bctx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, target)
					return nil
				},
			},
		},
	}
}
