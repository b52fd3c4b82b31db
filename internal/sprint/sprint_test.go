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

package sprint

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedParser(year int) Parser {
	return Parser{Now: func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	}}
}

func TestParse(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Version
	}{
		{"2012-Q2.1", Version{Year: 2012, Quarter: 2, Section: 1}},
		{"2012-Q2.1.0", Version{Year: 2012, Quarter: 2, Section: 1}},
		{"2011-Q4.4.7", Version{Year: 2011, Quarter: 4, Section: 4, Patch: 7}},
		{"2020-Q1.3.2", Version{Year: 2020, Quarter: 1, Section: 3, Patch: 2}},
	} {
		t.Run(test.in, func(t *testing.T) {
			got, err := fixedParser(2020).Parse(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Error(t *testing.T) {
	for _, test := range []struct {
		in      string
		wantErr error
	}{
		{"2012-Q2", ErrInvalidFormat},
		{"2012-Q2.1.10", ErrInvalidFormat},
		{"2012/Q2.1.0", ErrInvalidFormat},
		{"2012-Q2.1.x", ErrInvalidFormat},
		{"abcd-Q2.1.0", ErrInvalidYear},
		{"2010-Q2.1.0", ErrInvalidYear},
		{"2021-Q2.1.0", ErrInvalidYear},
		{"2012-Q5.1.0", ErrInvalidDigit},
		{"2012-Q0.1.0", ErrInvalidDigit},
		{"2012-Q1.9.0", ErrInvalidDigit},
	} {
		t.Run(test.in, func(t *testing.T) {
			_, err := fixedParser(2020).Parse(test.in)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", test.in, err, test.wantErr)
			}
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, v := range []Version{
		{Year: 2012, Quarter: 2, Section: 1},
		{Year: 2013, Quarter: 4, Section: 4, Patch: 9},
	} {
		t.Run(v.String(), func(t *testing.T) {
			got, err := Parse(v.String())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(v, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNext(t *testing.T) {
	for _, test := range []struct {
		in             string
		incrementPatch bool
		want           string
	}{
		{"2012-Q2.1.0", false, "2012-Q2.2.0"},
		{"2012-Q2.1.0", true, "2012-Q2.1.1"},
		{"2012-Q4.4.0", false, "2013-Q1.1.0"},
		{"2012-Q2.4.3", false, "2012-Q3.1.0"},
		{"2012-Q2.3.3", false, "2012-Q2.4.0"},
		{"2012-Q4.4.3", true, "2012-Q4.4.4"},
	} {
		t.Run(test.in, func(t *testing.T) {
			v, err := Parse(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, v.Next(test.incrementPatch).String()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSameBranch(t *testing.T) {
	a := Version{Year: 2012, Quarter: 2, Section: 1, Patch: 3}
	if !a.SameBranch(Version{Year: 2012, Quarter: 2, Section: 1}) {
		t.Error("SameBranch() = false, want true for a different patch")
	}
	if a.SameBranch(Version{Year: 2012, Quarter: 2, Section: 2, Patch: 3}) {
		t.Error("SameBranch() = true, want false for a different section")
	}
}

func TestCompare(t *testing.T) {
	for _, test := range []struct {
		a, b Version
		want int
	}{
		{Version{2012, 1, 1, 0}, Version{2012, 1, 1, 0}, 0},
		{Version{2012, 1, 1, 0}, Version{2012, 1, 1, 1}, -1},
		{Version{2012, 2, 1, 0}, Version{2012, 1, 4, 9}, 1},
		{Version{2011, 4, 4, 9}, Version{2012, 1, 1, 0}, -1},
	} {
		if got := test.a.Compare(test.b); got != test.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestVersionsTo(t *testing.T) {
	for _, test := range []struct {
		name     string
		from, to string
		want     []string
	}{
		{
			name: "next section",
			from: "2012-Q2.1",
			to:   "2012-Q2.2",
			want: []string{"2012-Q2.2.0"},
		},
		{
			name: "across year",
			from: "2012-Q4.3.0",
			to:   "2013-Q1.2.0",
			want: []string{"2012-Q4.4.0", "2013-Q1.1.0", "2013-Q1.2.0"},
		},
		{
			name: "patches on same branch",
			from: "2012-Q2.1.0",
			to:   "2012-Q2.1.2",
			want: []string{"2012-Q2.1.1", "2012-Q2.1.2"},
		},
		{
			name: "patches on later branch",
			from: "2012-Q2.1.1",
			to:   "2012-Q2.2.2",
			want: []string{"2012-Q2.2.0", "2012-Q2.2.1", "2012-Q2.2.2"},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			from, err := Parse(test.from)
			if err != nil {
				t.Fatal(err)
			}
			to, err := Parse(test.to)
			if err != nil {
				t.Fatal(err)
			}
			versions, err := from.VersionsTo(to)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, v := range versions {
				got = append(got, v.String())
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVersionsTo_InvalidRange(t *testing.T) {
	for _, test := range []struct {
		from, to Version
	}{
		{Version{2012, 2, 1, 0}, Version{2012, 2, 1, 0}},
		{Version{2012, 2, 1, 2}, Version{2012, 2, 1, 1}},
		{Version{2012, 2, 1, 0}, Version{2012, 1, 4, 0}},
		{Version{2013, 1, 1, 0}, Version{2012, 4, 4, 0}},
	} {
		if _, err := test.from.VersionsTo(test.to); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s.VersionsTo(%s) error = %v, want %v", test.from, test.to, err, ErrInvalidRange)
		}
	}
}

func TestNextGenerator(t *testing.T) {
	for _, test := range []struct {
		in             string
		incrementPatch bool
		want           string
	}{
		{"2012-Q2.1.0", true, "2012-Q2.1.1"},
		{"2012-Q4.1.4", true, "2012-Q4.1.5"},
		{"2012-Q2.1.1-SNAPSHOT", true, "2012-Q2.1.2"},
		{"2012-Q2.1", true, "2012-Q2.1.1"},
		{"2012-Q2.1.0", false, "2012-Q2.2.0"},
		{"2012-Q2.1.0-SNAPSHOT", false, "2012-Q2.2.0"},
		{"2012-Q4.4.0", false, "2013-Q1.1.0"},
	} {
		t.Run(test.in, func(t *testing.T) {
			got, err := NextGenerator{IncrementPatch: test.incrementPatch}.Next(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
