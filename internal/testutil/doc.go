// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixtures shared by luadistill tests: source
// trees on disk or in memory, and a fixed clock for deterministic bundle
// headers.
package testutil
