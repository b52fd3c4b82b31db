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

package errors

import (
	"errors"
	"io/fs"
	"testing"
)

func TestLibError(t *testing.T) {
	for _, test := range []struct {
		name     string
		err      error
		wantMsg  string
		wantKind error
		wantIs   error
	}{
		{
			name:     "no cause",
			err:      CustomError(ErrRemote, "project %s not found", "ABC"),
			wantMsg:  "remote service failure: project ABC not found",
			wantKind: ErrRemote,
		},
		{
			name:     "io with cause",
			err:      IO(fs.ErrNotExist, "reading %s", "a.sql"),
			wantMsg:  "io failure: reading a.sql: file does not exist",
			wantKind: ErrIO,
			wantIs:   fs.ErrNotExist,
		},
		{
			name:     "remote with cause",
			err:      Remote(errors.New("status 500"), "listing versions"),
			wantMsg:  "remote service failure: listing versions: status 500",
			wantKind: ErrRemote,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.wantMsg {
				t.Errorf("Error() = %q, want %q", got, test.wantMsg)
			}
			if !errors.Is(test.err, test.wantKind) {
				t.Errorf("errors.Is(%v, %v) = false, want true", test.err, test.wantKind)
			}
			if test.wantIs != nil && !errors.Is(test.err, test.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false, want true", test.err, test.wantIs)
			}
		})
	}
}
