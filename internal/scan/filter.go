// SPDX-License-Identifier: MPL-2.0

package scan

import (
	"fmt"
	"slices"

	"github.com/luadistill/luadistill/internal/module"
)

// Decisions, in the order they are checked.
const (
	// Required marks a real dependency.
	Required Decision = iota
	// Malformed marks an identifier outside the accepted character set.
	Malformed
	// Duplicate marks a (file, identifier) pair already seen.
	Duplicate
	// Excluded marks a name left to the host's native loader.
	Excluded
	// Commented marks a require that sits behind a comment marker.
	Commented
)

type (
	// Decision classifies a Candidate.
	Decision int

	visitKey struct {
		file string
		id   module.ID
	}

	// Filter decides which candidates are real dependencies.
	// It is not safe for concurrent use.
	Filter struct {
		excludes []module.ID
		excluded map[module.ID]struct{}
		visited  map[visitKey]struct{}
	}
)

// String returns a short lowercase label for logs.
func (d Decision) String() string {
	switch d {
	case Required:
		return "required"
	case Malformed:
		return "malformed"
	case Duplicate:
		return "duplicate"
	case Excluded:
		return "excluded"
	case Commented:
		return "commented"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// NewFilter creates a Filter over a fixed exclusion set. Duplicate names are
// dropped; the first occurrence keeps its position.
func NewFilter(excludes []module.ID) *Filter {
	f := &Filter{
		excluded: make(map[module.ID]struct{}, len(excludes)),
		visited:  make(map[visitKey]struct{}),
	}
	for _, name := range excludes {
		if _, dup := f.excluded[name]; dup {
			continue
		}
		f.excluded[name] = struct{}{}
		f.excludes = append(f.excludes, name)
	}
	return f
}

// Excludes returns the exclusion set in declaration order.
func (f *Filter) Excludes() []module.ID {
	return slices.Clone(f.excludes)
}

// IsExcluded reports whether name is in the exclusion set.
func (f *Filter) IsExcluded(name module.ID) bool {
	_, ok := f.excluded[name]
	return ok
}

// Visited reports whether file has already been recorded requiring id.
func (f *Filter) Visited(file string, id module.ID) bool {
	_, ok := f.visited[visitKey{file: file, id: id}]
	return ok
}

// Decide classifies c as found in file. Only a Required decision records the
// (file, identifier) pair, so a commented or excluded occurrence never hides a
// later real one.
func (f *Filter) Decide(file string, c Candidate) Decision {
	switch {
	case !c.ID.IsValid():
		return Malformed
	case f.Visited(file, c.ID):
		return Duplicate
	case f.IsExcluded(c.ID):
		return Excluded
	case c.Commented():
		return Commented
	}
	f.visited[visitKey{file: file, id: c.ID}] = struct{}{}
	return Required
}
