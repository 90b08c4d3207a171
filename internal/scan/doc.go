// SPDX-License-Identifier: MPL-2.0

// Package scan extracts require dependencies from Lua source text.
//
// Extraction is pattern based and line oriented; no Lua grammar is parsed.
// The work is split in two:
//
//   - A Scanner finds raw require candidates in one file. It is pure and
//     stateless, so a lexer-based implementation can replace PatternScanner
//     without touching the resolver or the emitter.
//   - A Filter decides, per candidate, whether it is a real dependency. It owns
//     the exclusion set and the visited (file, identifier) marker.
//
// The comment check is a heuristic: a candidate whose matched text contains
// "--" is treated as commented out. Requires inside string literals, or
// identifiers that themselves contain "--", are not told apart. Bundles depend
// on exactly this behavior, so it is kept as is.
package scan
