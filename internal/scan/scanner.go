// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"regexp"
	"strings"

	"github.com/luadistill/luadistill/internal/module"
)

// requirePattern matches `require("x")`, `require('x')`, `require "x"` and
// `require 'x'`. The greedy prefix anchors at line start, so at most one
// match is produced per line: the last require on it.
var requirePattern = regexp.MustCompile(`(?m)^.*require[( ]['"]([a-zA-Z0-9._/\-]+)['"]`)

type (
	// Candidate is one textual require occurrence.
	Candidate struct {
		// ID is the quoted identifier.
		ID module.ID
		// Line is the 1-based line number of the match.
		Line int
		// Text is the matched text, from line start to the closing quote.
		Text string
	}

	// Scanner finds require candidates in the source of one module.
	Scanner interface {
		Candidates(source string) []Candidate
	}

	// PatternScanner is the regular-expression Scanner.
	PatternScanner struct {
		pattern *regexp.Regexp
	}
)

// NewPatternScanner returns the default require Scanner.
func NewPatternScanner() *PatternScanner {
	return &PatternScanner{pattern: requirePattern}
}

// Candidates returns every require occurrence in source order.
func (s *PatternScanner) Candidates(source string) []Candidate {
	locs := s.pattern.FindAllStringSubmatchIndex(source, -1)
	if len(locs) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(locs))
	line, offset := 1, 0
	for _, loc := range locs {
		line += strings.Count(source[offset:loc[0]], "\n")
		offset = loc[0]
		candidates = append(candidates, Candidate{
			ID:   module.ID(source[loc[2]:loc[3]]),
			Line: line,
			Text: source[loc[0]:loc[1]],
		})
	}
	return candidates
}

// Commented reports whether the comment marker appears in the matched text.
func (c Candidate) Commented() bool {
	return strings.Contains(c.Text, module.CommentMarker)
}
