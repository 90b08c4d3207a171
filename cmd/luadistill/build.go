// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/luadistill/luadistill/internal/distill"
	"github.com/luadistill/luadistill/internal/module"
	"github.com/luadistill/luadistill/internal/postprocess"
	"github.com/luadistill/luadistill/internal/resolve"
)

// buildFlagValues holds the flags of `luadistill build`. The resolution
// flags are shared with `luadistill deps`.
type buildFlagValues struct {
	resolveFlagValues
	output string
	minify bool
	luajit bool
	watch  bool
}

// resolveFlagValues are the flags that shape resolution.
type resolveFlagValues struct {
	input       string
	excludes    string
	cyclePolicy string
}

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlagValues{}

	cmd := &cobra.Command{
		Use:   "build [entry.lua]",
		Short: "Bundle an entry file and the modules it requires",
		Long: `Bundle an entry file and every module it requires into one Lua file.

Module names are resolved relative to the entry's directory: require("a.b")
reads a/b.lua. Packages listed with --excludes are not bundled; the bundle
hands them to the host's require at run time.

Flags override luadistill.cue only when given explicitly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, rootFlags, flags, args)
		},
	}

	addResolveFlags(cmd, &flags.resolveFlagValues)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "bundle file (with extension) or output directory (default: working directory)")
	cmd.Flags().BoolVarP(&flags.minify, "minify", "m", false, "minify the bundle with LuaSrcDiet")
	cmd.Flags().BoolVarP(&flags.luajit, "luajit", "j", false, "compile the bundle to bytecode with luajit -b")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild whenever a .lua file under the entry directory changes")

	return cmd
}

func addResolveFlags(cmd *cobra.Command, flags *resolveFlagValues) {
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "entry .lua file (alternative to the positional argument)")
	cmd.Flags().StringVarP(&flags.excludes, "excludes", "x", "", "comma-separated packages left to the host's require")
	cmd.Flags().StringVar(&flags.cyclePolicy, "cycle-policy", "", "how require loops are handled: fail or allow")
}

func runBuild(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *buildFlagValues, args []string) error {
	ctx := cmd.Context()

	sess, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return fail(app.stderr, err, rootFlags.verbose)
	}

	opts, err := sess.distillOptions(cmd, &flags.resolveFlagValues, args)
	if err != nil {
		return fail(app.stderr, actionable(err, opts.Entry), sess.verbose)
	}

	opts.Output = sess.cfg.Output
	if cmd.Flags().Changed("output") {
		opts.Output = flags.output
	}
	opts.Plan = postprocess.Plan{
		Minify: sess.cfg.Minify,
		JIT:    sess.cfg.LuaJIT,
		Tools: postprocess.Tools{
			LuaSrcDiet: sess.cfg.Tools.LuaSrcDiet.String(),
			LuaJIT:     sess.cfg.Tools.LuaJIT.String(),
		},
	}
	if cmd.Flags().Changed("minify") {
		opts.Plan.Minify = flags.minify
	}
	if cmd.Flags().Changed("luajit") {
		opts.Plan.JIT = flags.luajit
	}
	opts.Stdout = app.stdout
	opts.Stderr = app.stderr

	if flags.watch {
		return runWatch(ctx, app, sess, opts)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("luadistill "+Version))

	res, err := distill.Build(ctx, opts)
	if res != nil {
		printBuildSummary(app.stdout, res)
	}
	if err != nil {
		return fail(app.stderr, actionable(err, opts.Entry), sess.verbose)
	}
	return nil
}

// distillOptions merges configuration with the resolution flags and the
// positional entry argument.
func (s *session) distillOptions(cmd *cobra.Command, flags *resolveFlagValues, args []string) (distill.Options, error) {
	opts := distill.Options{
		Cwd:     s.cwd,
		Version: Version,
		Logger:  s.logger,
	}

	switch {
	case len(args) == 1 && flags.input != "" && args[0] != flags.input:
		return opts, &ExitError{
			Code: exitUsage,
			Err:  fmt.Errorf("entry given twice: %q and --input %q", args[0], flags.input),
		}
	case len(args) == 1:
		opts.Entry = args[0]
	default:
		opts.Entry = flags.input
	}

	var err error
	if cmd.Flags().Changed("excludes") {
		opts.Excludes, err = module.ParseList(flags.excludes)
	} else {
		opts.Excludes, err = s.cfg.ExcludeIDs()
	}
	if err != nil {
		return opts, fmt.Errorf("exclude list: %w", err)
	}

	opts.CyclePolicy = resolve.CyclePolicy(s.cfg.CyclePolicy)
	if cmd.Flags().Changed("cycle-policy") {
		opts.CyclePolicy = resolve.CyclePolicy(flags.cyclePolicy)
	}
	if err := opts.CyclePolicy.Validate(); err != nil {
		return opts, err
	}

	return opts, nil
}

func runWatch(ctx context.Context, app *App, sess *session, opts distill.Options) error {
	fmt.Fprintf(app.stdout, "%s %s\n",
		VerboseHighlightStyle.Render("→"),
		WarningStyle.Render("Watch mode: rebuilding on .lua changes (Ctrl+C to stop)"))

	err := distill.Watch(ctx, opts, distill.WatchOptions{
		Debounce: sess.cfg.Watch.Debounce,
		Ignore:   sess.cfg.Watch.Ignore,
		OnBuild: func(res *distill.Result, err error) {
			fmt.Fprintf(app.stdout, "\n%s %s\n",
				VerboseHighlightStyle.Render("→"),
				SubtitleStyle.Render(time.Now().Format(time.TimeOnly)))
			if res != nil {
				printBuildSummary(app.stdout, res)
			}
			if err != nil {
				err = actionable(err, opts.Entry)
				_, issueID := classifyError(err)
				renderError(app.stderr, err, issueID, sess.verbose)
			}
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fail(app.stderr, err, sess.verbose)
	}

	fmt.Fprintf(app.stdout, "\n%s\n", SubtitleStyle.Render("Watch mode stopped."))
	return nil
}

// printBuildSummary lists what went into the bundle and where it was written.
func printBuildSummary(w io.Writer, res *distill.Result) {
	resolution := res.Resolution

	fmt.Fprintf(w, "%s %s %s %s\n",
		SubtitleStyle.Render("merge from"),
		CmdStyle.Render(resolution.EntryPath),
		SubtitleStyle.Render("to"),
		CmdStyle.Render(res.Paths.Merged))

	if len(resolution.Excludes) > 0 {
		names := make([]string, 0, len(resolution.Excludes))
		for _, id := range resolution.Excludes {
			names = append(names, id.String())
		}
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("excluded:"), WarningStyle.Render(strings.Join(names, ", ")))
	}

	fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(fmt.Sprintf("modules (%d):", resolution.Table.Len())))
	for _, id := range resolution.Table.IDs() {
		fmt.Fprintf(w, "  %s\n", CmdStyle.Render(id.String()))
	}

	fmt.Fprintf(w, "%s %s %s\n",
		SuccessStyle.Render("✓"),
		res.Paths.Merged,
		SubtitleStyle.Render("("+humanize.Bytes(uint64(res.Size))+")"))

	for _, step := range res.Steps {
		if step.Err != nil {
			fmt.Fprintf(w, "%s %s %s\n", ErrorStyle.Render("✗"), step.Step.Output, SubtitleStyle.Render("("+step.Step.Name+")"))
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", SuccessStyle.Render("✓"), step.Step.Output, SubtitleStyle.Render("("+step.Step.Name+")"))
	}
}
