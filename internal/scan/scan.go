// SPDX-License-Identifier: MPL-2.0

package scan

import "github.com/luadistill/luadistill/internal/module"

type (
	// Match is a Candidate together with the Filter's decision.
	Match struct {
		Candidate
		Decision Decision
	}

	// Result is the outcome of scanning one file.
	Result struct {
		// Source is the input text, returned unchanged.
		Source string
		// Requires lists dependency identifiers in first-occurrence order.
		Requires []module.ID
		// Matches holds every candidate and its decision.
		Matches []Match
	}
)

// File scans the source of file with s and classifies the candidates with f.
// It never fails: malformed or ignored requires are simply left out of
// Requires.
func File(s Scanner, f *Filter, file, source string) Result {
	res := Result{Source: source}
	for _, c := range s.Candidates(source) {
		d := f.Decide(file, c)
		res.Matches = append(res.Matches, Match{Candidate: c, Decision: d})
		if d == Required {
			res.Requires = append(res.Requires, c.ID)
		}
	}
	return res
}
