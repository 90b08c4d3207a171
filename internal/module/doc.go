// SPDX-License-Identifier: MPL-2.0

// Package module defines Lua module identifiers and the ordered module table
// that a resolution pass fills in.
//
// A module identifier is the dotted name written inside a require call
// (e.g. "utils.helpers"). Identifiers map to files lexically: every dot becomes
// a path separator and the ".lua" extension is appended, relative to the
// directory of the entry file. No search paths are consulted.
//
// The Table preserves insertion order because that order becomes the order in
// which modules are defined inside the emitted bundle.
package module
