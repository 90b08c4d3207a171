// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luadistill/luadistill/internal/config"
)

// newConfigCommand creates the `luadistill config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage luadistill configuration",
		Long: `Manage luadistill configuration.

Configuration is read from the first file found:
  - the --config flag
  - ./luadistill.cue
  - Linux: ~/.config/luadistill/config.cue
  - macOS: ~/Library/Application Support/luadistill/config.cue
  - Windows: %APPDATA%\luadistill\config.cue

LUADISTILL_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	var (
		force bool
		user  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Create a default configuration file.

By default luadistill.cue is written to the working directory; --user writes
the per-user config file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, rootFlags, force, user)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&user, "user", false, "write the per-user config file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	cwd, err := app.getwd()
	if err != nil {
		return fail(app.stderr, err, rootFlags.verbose)
	}

	opts := config.LoadOptions{ConfigFilePath: rootFlags.configPath, BaseDir: cwd}
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return fail(app.stderr, err, rootFlags.verbose)
	}

	source, err := config.Locate(opts)
	if err != nil {
		return fail(app.stderr, err, rootFlags.verbose)
	}
	if source == "" {
		source = "(using defaults)"
	}

	fmt.Fprintf(app.stdout, "// %s %s\n", CmdStyle.Render("source:"), SubtitleStyle.Render(source))
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}

func initConfig(app *App, rootFlags *rootFlagValues, force, user bool) error {
	var path string
	if user {
		p, err := config.UserConfigPath(config.LoadOptions{})
		if err != nil {
			return fail(app.stderr, err, rootFlags.verbose)
		}
		path = p
	} else {
		cwd, err := app.getwd()
		if err != nil {
			return fail(app.stderr, err, rootFlags.verbose)
		}
		path = filepath.Join(cwd, config.LocalConfigFile)
	}

	if err := config.Init(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			err = &ExitError{Code: exitUsage, Err: fmt.Errorf("%w (use --force to overwrite)", err)}
		}
		return fail(app.stderr, err, rootFlags.verbose)
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
