// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpguard

import (
	"regexp"
	"strings"
	"sync"
)

// compiledPattern memoizes the regexp compiled from a single glob pattern
// string, per spec.md §4.3 ("compiled patterns are memoized per pattern
// string in a lazy cache").
type compiledPattern struct {
	source string
	re     *regexp.Regexp
}

// patternCache is the process-wide lazy cache of glob -> compiled regexp.
// It grows monotonically with the unique pattern strings observed, bounded
// in practice by the configured allow/block lists (spec.md §5).
var (
	patternCacheMu sync.Mutex
	patternCache   = map[string]*regexp.Regexp{}
)

func compile(pattern string) *compiledPattern {
	patternCacheMu.Lock()
	re, ok := patternCache[pattern]
	if !ok {
		re = regexp.MustCompile(globToRegexp(pattern))
		patternCache[pattern] = re
	}
	patternCacheMu.Unlock()
	return &compiledPattern{source: pattern, re: re}
}

func (p *compiledPattern) match(path string) bool {
	return p.re.MatchString(path)
}

// globToRegexp translates a guard glob pattern into an anchored regexp
// source string. Semantics (spec.md §4.3):
//   - '*' matches any run, including empty, of any characters.
//   - '?' matches exactly one character.
//   - every other regexp metacharacter is escaped (treated literally).
//   - the whole pattern is anchored with ^...$.
func globToRegexp(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
