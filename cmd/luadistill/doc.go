// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the luadistill command line: build, deps and config.
//
// Commands delegate to internal/distill for the pipeline and translate its
// errors into exit codes and actionable messages at this boundary.
package cmd
