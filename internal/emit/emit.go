// SPDX-License-Identifier: MPL-2.0

// Package emit serializes resolved modules into a single Lua bundle.
//
// A bundle is, in order: a header comment naming the tool and the build time,
// the loader prelude, one native-delegating stub per excluded package, one
// lazily-invoked factory per module (in module table order), and a trailer
// that executes the entry module and returns its result.
//
// Module sources are inserted verbatim as factory bodies. The bundle is valid
// Lua whenever every module is and none of them redefines __DISTILLER.
package emit

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/luadistill/luadistill/internal/module"
)

// Divider separates module definitions in the bundle.
const Divider = "\n\n---------------------------------------\n\n\n"

// Prelude defines the __DISTILLER loader: define(name, factory) registers a
// factory, exec(name) runs it once on first use and caches its result.
//
//go:embed distill_head.lua
var Prelude string

var luaEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

type (
	// Modules is the ordered set of modules to emit.
	Modules interface {
		Entries() []module.Entry
	}

	// Bundle is everything the emitter needs from a resolution pass.
	Bundle struct {
		// EntryID is executed by the trailer.
		EntryID module.ID
		// Modules are emitted in their own order.
		Modules Modules
		// Excludes get native-delegating stubs.
		Excludes []module.ID
	}

	// Emitter writes bundles.
	Emitter struct {
		tool    string
		version string
		now     func() time.Time
	}

	// Option configures an Emitter.
	Option func(*Emitter)
)

// WithVersion sets the version shown in the header comment.
func WithVersion(version string) Option {
	return func(e *Emitter) {
		e.version = version
	}
}

// WithClock sets the time source for the header timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		e.now = now
	}
}

// New creates an Emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		tool:    "luadistill",
		version: "dev",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render returns the complete bundle text.
func (e *Emitter) Render(b Bundle) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "-- Generated by %s(version: %s)  at %s", e.tool, e.version, e.now().Format(time.RFC1123))
	sb.WriteString(Divider)
	sb.WriteString(Prelude)

	for _, name := range b.Excludes {
		q := quote(name.String())
		fmt.Fprintf(&sb, "__DISTILLER:define(%s,function(require)return __DISTILLER.__nativeRequire(%s)end)\n", q, q)
	}

	if b.Modules != nil {
		for _, entry := range b.Modules.Entries() {
			fmt.Fprintf(&sb, "__DISTILLER:define(%s, function(require)\n", quote(entry.ID.String()))
			sb.WriteString(entry.Source)
			sb.WriteString("\nend)\n\n")
			sb.WriteString(Divider)
		}
	}

	fmt.Fprintf(&sb, "return __DISTILLER:exec(%s)", quote(b.EntryID.String()))
	return sb.String()
}

// Emit writes the bundle to w.
func (e *Emitter) Emit(w io.Writer, b Bundle) error {
	if _, err := io.WriteString(w, e.Render(b)); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// quote renders s as a double-quoted Lua string literal.
func quote(s string) string {
	return `"` + luaEscaper.Replace(s) + `"`
}
