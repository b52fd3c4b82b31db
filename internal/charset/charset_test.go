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

package charset

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	for _, test := range []struct {
		name      string
		encoding  string
		text      string
		wantBytes []byte
	}{
		{"default", "", "café", []byte("café")},
		{"utf-8", "utf-8", "café", []byte("café")},
		{"latin1", "ISO-8859-1", "café", []byte{'c', 'a', 'f', 0xe9}},
	} {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(test.encoding, &buf)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := io.WriteString(w, test.text); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.wantBytes, buf.Bytes()); diff != "" {
				t.Errorf("encoded mismatch (-want +got):\n%s", diff)
			}
			r, err := NewReader(test.encoding, &buf)
			if err != nil {
				t.Fatal(err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.text, string(got)); diff != "" {
				t.Errorf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := NewReader("no-such-encoding", strings.NewReader("")); err == nil {
		t.Error("NewReader() expected error for unknown encoding, got nil")
	}
}
