// Copyright 2025 Google LLC
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

// Package sprint implements sprint versions of the form YYYY-Qn.m.p, where
// n is the quarter, m the section within the quarter and p the patch.
package sprint

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinYear is the earliest year accepted by Parse.
const MinYear = 2011

const snapshotSuffix = "-SNAPSHOT"

var (
	// ErrInvalidFormat is returned for strings that are not shaped like a
	// sprint version.
	ErrInvalidFormat = errors.New("invalid sprint version format")
	// ErrInvalidYear is returned when the year is before MinYear or after
	// the current year.
	ErrInvalidYear = errors.New("invalid sprint version year")
	// ErrInvalidDigit is returned when the quarter or section is not 1 to 4.
	ErrInvalidDigit = errors.New("invalid sprint version digit")
	// ErrInvalidRange is returned when a target version does not follow the
	// current one.
	ErrInvalidRange = errors.New("invalid sprint version range")
)

// Version represents a sprint version.
type Version struct {
	Year, Quarter, Section, Patch int
}

// Parser parses sprint versions. The zero value uses the system clock.
type Parser struct {
	// Now returns the current time; the year it falls in is the latest
	// valid sprint year.
	Now func() time.Time
}

// Parse parses a version string in the form YYYY-Qn.m or YYYY-Qn.m.p using
// the system clock.
func Parse(s string) (Version, error) {
	return Parser{}.Parse(s)
}

// Parse parses a version string in the form YYYY-Qn.m or YYYY-Qn.m.p.
func (p Parser) Parse(s string) (Version, error) {
	if len(s) != 9 && len(s) != 11 {
		return Version{}, fmt.Errorf("%w: %q should be 9 or 11 characters long in the form YYYY-Qn.m or YYYY-Qn.m.p", ErrInvalidFormat, s)
	}
	if s[4] != '-' || s[5] != 'Q' || s[7] != '.' || (len(s) == 11 && s[9] != '.') {
		return Version{}, fmt.Errorf("%w: %q should be in the form YYYY-Qn.m or YYYY-Qn.m.p", ErrInvalidFormat, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidYear, s, err)
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	if current := now().Year(); year < MinYear || year > current {
		return Version{}, fmt.Errorf("%w: %d must be between %d and %d", ErrInvalidYear, year, MinYear, current)
	}
	quarter, err := oneToFour(s, s[6])
	if err != nil {
		return Version{}, err
	}
	section, err := oneToFour(s, s[8])
	if err != nil {
		return Version{}, err
	}
	v := Version{Year: year, Quarter: quarter, Section: section}
	if len(s) == 11 {
		patch, err := strconv.Atoi(s[10:])
		if err != nil {
			return Version{}, fmt.Errorf("%w: invalid patch in %q", ErrInvalidFormat, s)
		}
		v.Patch = patch
	}
	return v, nil
}

func oneToFour(s string, c byte) (int, error) {
	if c < '1' || c > '4' {
		return 0, fmt.Errorf("%w: %q in %q must be 1, 2, 3 or 4", ErrInvalidDigit, c, s)
	}
	return int(c - '0'), nil
}

// String formats v as YYYY-Qn.m.p.
func (v Version) String() string {
	return fmt.Sprintf("%d-Q%d.%d.%d", v.Year, v.Quarter, v.Section, v.Patch)
}

// Next returns the version after v. With incrementPatch the patch number is
// incremented; otherwise the version moves to the first release of the next
// section, rolling over into the next quarter and year.
func (v Version) Next(incrementPatch bool) Version {
	switch {
	case incrementPatch:
		return Version{Year: v.Year, Quarter: v.Quarter, Section: v.Section, Patch: v.Patch + 1}
	case v.Quarter == 4 && v.Section == 4:
		return Version{Year: v.Year + 1, Quarter: 1, Section: 1}
	case v.Section == 4:
		return Version{Year: v.Year, Quarter: v.Quarter + 1, Section: 1}
	default:
		return Version{Year: v.Year, Quarter: v.Quarter, Section: v.Section + 1}
	}
}

// SameBranch reports whether v and other only differ in their patch number.
func (v Version) SameBranch(other Version) bool {
	return v.Year == other.Year && v.Quarter == other.Quarter && v.Section == other.Section
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after other.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Year, other.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Quarter, other.Quarter); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Section, other.Section); c != 0 {
		return c
	}
	return cmp.Compare(v.Patch, other.Patch)
}

// VersionsTo returns the versions after v up to and including target. The
// sequence moves section by section and only increments the patch number on
// the branch of target when target is a patch release.
func (v Version) VersionsTo(target Version) ([]Version, error) {
	if target.Compare(v) <= 0 {
		return nil, fmt.Errorf("%w: %s can not be before %s", ErrInvalidRange, target, v)
	}
	var versions []Version
	next := v
	for next != target {
		next = next.Next(target.Patch > 0 && target.SameBranch(next))
		if next.Compare(target) > 0 {
			return nil, fmt.Errorf("%w: %s is not reachable from %s", ErrInvalidRange, target, v)
		}
		versions = append(versions, next)
	}
	return versions, nil
}

// NextGenerator computes the next sprint version of a version string, with
// any -SNAPSHOT suffix removed.
type NextGenerator struct {
	IncrementPatch bool
	Parser         Parser
}

// Next returns the sprint version following current.
func (g NextGenerator) Next(current string) (string, error) {
	v, err := g.Parser.Parse(strings.Replace(current, snapshotSuffix, "", 1))
	if err != nil {
		return "", err
	}
	return v.Next(g.IncrementPatch).String(), nil
}
