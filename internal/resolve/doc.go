// SPDX-License-Identifier: MPL-2.0

// Package resolve walks the require graph of a Lua entry file and collects
// every module it transitively depends on.
//
// Resolution is depth first and synchronous. Each module file is read once and
// registered in a module.Table after its own dependencies are resolved, so
// dependencies precede the modules requiring them and the entry module comes
// last. Identifiers map to files relative to the entry file's directory (see
// module.ID.Path); excluded names are never looked up.
//
// All state of a pass (table, visited marker, in-flight stack, graph) belongs
// to that pass, so one Resolver can serve independent, concurrent calls.
package resolve
