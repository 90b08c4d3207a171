// SPDX-License-Identifier: MPL-2.0

// Package output derives where a bundle and its post-processed siblings are
// written.
package output

import (
	"path/filepath"
	"strings"

	"github.com/luadistill/luadistill/internal/module"
)

const (
	mergedSuffix   = ".merged" + module.Ext
	minifiedSuffix = ".min" + module.Ext
	jitSuffix      = "jit"
)

// Paths lists every file a build may produce.
type Paths struct {
	// Merged is the bundle itself.
	Merged string
	// Minified is written by the minifier.
	Minified string
	// MergedJIT is the bytecode compiled from Merged.
	MergedJIT string
	// MinifiedJIT is the bytecode compiled from Minified.
	MinifiedJIT string
}

// Derive computes the output paths for entryPath.
//
// An output with a file extension names the bundle directly and the minified
// sibling becomes "<output>.min.lua". Anything else is a directory (empty
// means cwd) receiving "<entry>.merged.lua" and "<entry>.min.lua". Bytecode
// files append "jit" to either name. Relative paths are resolved against cwd.
func Derive(entryPath, out, cwd string) Paths {
	if out == "" {
		out = cwd
	} else if !filepath.IsAbs(out) {
		out = filepath.Join(cwd, out)
	}
	out = filepath.Clean(out)

	var p Paths
	if filepath.Ext(out) != "" {
		p.Merged = out
		p.Minified = out + minifiedSuffix
	} else {
		base := strings.TrimSuffix(filepath.Base(entryPath), module.Ext)
		p.Merged = filepath.Join(out, base+mergedSuffix)
		p.Minified = filepath.Join(out, base+minifiedSuffix)
	}
	p.MergedJIT = p.Merged + jitSuffix
	p.MinifiedJIT = p.Minified + jitSuffix
	return p
}

// Dir returns the directory that has to exist before the bundle is written.
func (p Paths) Dir() string {
	return filepath.Dir(p.Merged)
}
