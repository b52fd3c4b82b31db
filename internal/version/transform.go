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

// Package version computes release, development and next version strings by
// rewriting one capture group of a regular expression.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// Increment replaces the selected group with its integer value plus one.
	Increment = "INCREMENT"
	// GroupText replaces the selected group with its own text.
	GroupText = "GROUP_TEXT"
)

var (
	// ErrNoMatch is returned when the version does not fully match the regex.
	ErrNoMatch = errors.New("version does not match pattern")
	// ErrInvalidGroupIndex is returned when the group is not a capture group
	// of the regex.
	ErrInvalidGroupIndex = errors.New("invalid group index")
	// ErrNotANumber is returned when an Increment is applied to a group
	// whose text is not an integer.
	ErrNotANumber = errors.New("group text is not a number")
)

// compile compiles regex so that it must match the whole input.
func compile(regex string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + regex + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid version regex %q: %w", regex, err)
	}
	return re, nil
}

// Transform rewrites group of current as matched by regex. The replacement is
// Increment, GroupText or a literal string. Everything else is copied byte
// for byte. Increment ignores spaces around the number.
func Transform(current, regex string, group int, replacement string) (string, error) {
	re, err := compile(regex)
	if err != nil {
		return "", err
	}
	return transform(re, current, group, replacement)
}

func transform(re *regexp.Regexp, current string, group int, replacement string) (string, error) {
	numGroups := re.NumSubexp()
	if group < 1 || group > numGroups {
		return "", fmt.Errorf("%w: %d, must be between 1 and %d", ErrInvalidGroupIndex, group, numGroups)
	}
	m := re.FindStringSubmatchIndex(current)
	if m == nil {
		return "", fmt.Errorf("%w: %q does not match %q", ErrNoMatch, current, re.String())
	}

	var sb strings.Builder
	cursor := 0
	for i := 1; i <= numGroups; i++ {
		start, end := m[2*i], m[2*i+1]
		if start < 0 {
			// The group did not take part in the match.
			continue
		}
		if start == end {
			cursor = end
			continue
		}
		if start > cursor {
			sb.WriteString(current[cursor:start])
		}
		text := current[start:end]
		if i != group {
			sb.WriteString(text)
			cursor = end
			continue
		}
		switch replacement {
		case Increment:
			n, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				return "", fmt.Errorf("%w: group %d of %q is %q", ErrNotANumber, group, current, text)
			}
			sb.WriteString(strconv.Itoa(n + 1))
		case GroupText:
			sb.WriteString(text)
		default:
			sb.WriteString(replacement)
		}
		cursor = end
	}
	if cursor < len(current) {
		sb.WriteString(current[cursor:])
	}
	return sb.String(), nil
}

// Parts returns the integer value of every capture group of regex in
// version.
func Parts(version, regex string) ([]int, error) {
	re, err := compile(regex)
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatch(version)
	if m == nil {
		return nil, fmt.Errorf("%w: %q does not match %q", ErrNoMatch, version, regex)
	}
	parts := make([]int, 0, len(m)-1)
	for i, text := range m[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%w: group %d of %q is %q", ErrNotANumber, i+1, version, text)
		}
		parts = append(parts, n)
	}
	return parts, nil
}
