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

// Command releasekit computes release versions, merges SQL scripts, filters
// application manifests and manages JIRA versions.
package main

import (
	"context"
	"log"
	"os"

	"github.com/croche/releasekit/internal/releasekit"
)

func main() {
	ctx := context.Background()
	if err := releasekit.Run(ctx, os.Args...); err != nil {
		log.Fatalf("releasekit: %v", err)
	}
}
