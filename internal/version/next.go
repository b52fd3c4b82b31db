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

package version

import (
	"errors"
	"fmt"
	"regexp"
)

// NextGenerator computes the version that follows a given version.
type NextGenerator interface {
	Next(current string) (string, error)
}

// RegexGenerator computes the next version by rewriting one group of a
// regex.
type RegexGenerator struct {
	re          *regexp.Regexp
	group       int
	replacement string
}

// NewRegexGenerator returns a generator that applies replacement to group of
// regex. An empty replacement means Increment.
func NewRegexGenerator(regex string, group int, replacement string) (*RegexGenerator, error) {
	if regex == "" {
		return nil, errors.New("next version regex must not be empty")
	}
	if group < 1 {
		return nil, fmt.Errorf("%w: next version group %d must be >= 1", ErrInvalidGroupIndex, group)
	}
	if replacement == "" {
		replacement = Increment
	}
	re, err := compile(regex)
	if err != nil {
		return nil, err
	}
	return &RegexGenerator{re: re, group: group, replacement: replacement}, nil
}

// Next implements NextGenerator.
func (g *RegexGenerator) Next(current string) (string, error) {
	return transform(g.re, current, g.group, g.replacement)
}

// NewTwoDigitGenerator increments the second number of a two number version,
// for example 2.1 to 2.2.
func NewTwoDigitGenerator() *RegexGenerator {
	return mustGenerator(twoDigitRegex, 2)
}

// NewThreeDigitGenerator increments the third number of a three number
// version, for example 2.1.1 to 2.1.2.
func NewThreeDigitGenerator() *RegexGenerator {
	return mustGenerator(threeDigitRegex, 3)
}

// NewThreeDigitBranchGenerator increments the third number of a three number
// version on a branch and the second one on trunk.
func NewThreeDigitBranchGenerator(branch bool) *RegexGenerator {
	if branch {
		return mustGenerator(threeDigitRegex, 3)
	}
	return mustGenerator(threeDigitRegex, 2)
}

func mustGenerator(regex string, group int) *RegexGenerator {
	g, err := NewRegexGenerator(regex, group, Increment)
	if err != nil {
		panic(err)
	}
	return g
}
