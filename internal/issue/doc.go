// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown guidance
// for the conditions that stop a build.
//
// An ActionableError carries the failed operation, the file involved and
// suggestions for the user. Catalogued issues are longer explanations rendered
// with glamour when the CLI runs in verbose mode.
package issue
