// SPDX-License-Identifier: MPL-2.0

// Package config loads luadistill settings with Viper, using CUE as the file
// format.
//
// A file is looked up in this order: an explicit path, luadistill.cue in the
// project directory, then config.cue in the user configuration directory
// ($XDG_CONFIG_HOME/luadistill on Linux, ~/Library/Application Support/luadistill
// on macOS, %APPDATA%\luadistill on Windows). Files are validated against an
// embedded schema (config_schema.cue). LUADISTILL_* environment variables
// override file values.
package config
