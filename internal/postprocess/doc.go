// SPDX-License-Identifier: MPL-2.0

// Package postprocess runs the external tools that may follow a build: the
// LuaSrcDiet minifier and the LuaJIT bytecode compiler.
//
// Each step is a command line whose arguments are shell-quoted and executed
// by the embedded mvdan/sh interpreter, so the same invocation works on every
// platform without a system shell. Steps run one after another, only after
// the bundle is on disk.
package postprocess
