// SPDX-License-Identifier: MPL-2.0

// Package distill runs a complete build: it resolves the entry file, renders
// the bundle, writes it, and hands the written file to the post-processing
// tools. Nothing is written when resolution fails.
package distill
