// SPDX-License-Identifier: MPL-2.0

package module

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// Ext is the source extension of every Lua module file.
	Ext = ".lua"

	// CommentMarker starts a Lua line comment.
	CommentMarker = "--"

	// EntrySuffix is appended to the entry file's base name to form its
	// synthetic identifier in the module table.
	EntrySuffix = "_distilled"
)

// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
var ErrInvalidID = errors.New("invalid module identifier")

// idPattern accepts letters, digits, dot, underscore, slash and hyphen.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9._/\-]+$`)

type (
	// ID names a module as written in a require expression, or the synthetic
	// name given to the entry module.
	ID string

	// InvalidIDError is returned when an identifier contains characters outside
	// the accepted set. It wraps ErrInvalidID for errors.Is() compatibility.
	InvalidIDError struct {
		Value ID
	}
)

// Error implements the error interface.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid module identifier %q (allowed: letters, digits, '.', '_', '/', '-')", string(e.Value))
}

// Unwrap returns ErrInvalidID.
func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidID
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsValid reports whether the identifier is syntactically well-formed.
func (id ID) IsValid() bool {
	return idPattern.MatchString(string(id))
}

// Validate returns an *InvalidIDError when the identifier is malformed.
func (id ID) Validate() error {
	if !id.IsValid() {
		return &InvalidIDError{Value: id}
	}
	return nil
}

// RelPath translates the identifier into a slash-free relative file path:
// "a.b.c" becomes "a/b/c.lua" (with the OS separator).
func (id ID) RelPath() string {
	return filepath.FromSlash(strings.ReplaceAll(string(id), ".", "/") + Ext)
}

// Path resolves the identifier against baseDir, the directory holding the
// entry file. The result is cleaned so that the same module always maps to
// the same path string.
func (id ID) Path(baseDir string) string {
	return filepath.Clean(filepath.Join(baseDir, id.RelPath()))
}

// EntryID returns the synthetic identifier of the entry module,
// e.g. "main.lua_distilled" for "/src/main.lua".
func EntryID(entryPath string) ID {
	return ID(filepath.Base(entryPath) + EntrySuffix)
}

// HasExt reports whether path carries the Lua source extension.
func HasExt(path string) bool {
	return filepath.Ext(path) == Ext
}

// ParseList splits a comma-separated list of package names, trimming
// whitespace and dropping empty and repeated items. Every remaining name must
// be a valid identifier because it is emitted verbatim into the bundle.
func ParseList(csv string) ([]ID, error) {
	var ids []ID
	seen := make(map[ID]bool)
	for item := range strings.SplitSeq(csv, ",") {
		id := ID(strings.TrimSpace(item))
		if id == "" || seen[id] {
			continue
		}
		if err := id.Validate(); err != nil {
			return nil, err
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
