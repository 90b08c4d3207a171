// SPDX-License-Identifier: MPL-2.0

package module

import (
	"iter"
	"slices"
)

type (
	// Entry is one resolved module: its identifier and its unmodified source.
	Entry struct {
		ID     ID
		Source string
	}

	// Table maps module identifiers to source text. Entries are only ever
	// added; the first write for an identifier wins and insertion order is
	// preserved for emission.
	//
	// A Table is not safe for concurrent use. Each resolution pass owns its own.
	Table struct {
		order   []ID
		sources map[ID]string
	}
)

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		sources: make(map[ID]string),
	}
}

// Add registers source under id. It reports false, leaving the table
// untouched, when id is already present.
func (t *Table) Add(id ID, source string) bool {
	if _, exists := t.sources[id]; exists {
		return false
	}
	t.sources[id] = source
	t.order = append(t.order, id)
	return true
}

// Has reports whether id has been registered.
func (t *Table) Has(id ID) bool {
	_, ok := t.sources[id]
	return ok
}

// Get returns the source registered under id.
func (t *Table) Get(id ID) (string, bool) {
	src, ok := t.sources[id]
	return src, ok
}

// Len returns the number of registered modules.
func (t *Table) Len() int {
	return len(t.order)
}

// IDs returns the registered identifiers in insertion order.
func (t *Table) IDs() []ID {
	return slices.Clone(t.order)
}

// Entries returns a snapshot of all entries in insertion order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, Entry{ID: id, Source: t.sources[id]})
	}
	return entries
}

// All iterates over the table in insertion order.
func (t *Table) All() iter.Seq2[ID, string] {
	return func(yield func(ID, string) bool) {
		for _, id := range t.order {
			if !yield(id, t.sources[id]) {
				return
			}
		}
	}
}
