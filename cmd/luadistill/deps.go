// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
	"gopkg.in/yaml.v3"

	"github.com/luadistill/luadistill/internal/distill"
	"github.com/luadistill/luadistill/internal/module"
	"github.com/luadistill/luadistill/internal/resolve"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type (
	depsFlagValues struct {
		resolveFlagValues
		tree   bool
		format string
	}

	// depsManifest is the machine-readable form of a resolution.
	depsManifest struct {
		Entry     string           `json:"entry" yaml:"entry"`
		BaseDir   string           `json:"base_dir" yaml:"base_dir"`
		Modules   []manifestModule `json:"modules" yaml:"modules"`
		Excludes  []string         `json:"excludes" yaml:"excludes"`
		LoadOrder []string         `json:"load_order,omitempty" yaml:"load_order,omitempty"`
	}

	// manifestModule is one bundled module in table order.
	manifestModule struct {
		Name     string   `json:"name" yaml:"name"`
		Path     string   `json:"path" yaml:"path"`
		Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	}
)

func newDepsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &depsFlagValues{}

	cmd := &cobra.Command{
		Use:   "deps [entry.lua]",
		Short: "List the modules an entry file pulls in",
		Long: `Resolve an entry file without writing a bundle.

Modules are listed in the order the bundle would register them, the entry
last. --tree shows who requires whom and is text only; --format json or yaml prints a
manifest that also carries the excluded packages and a load order in which
every module follows its dependencies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, app, rootFlags, flags, args)
		},
	}

	addResolveFlags(cmd, &flags.resolveFlagValues)
	cmd.Flags().BoolVarP(&flags.tree, "tree", "t", false, "print the require tree")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatText, "output format: text, json or yaml")

	return cmd
}

func runDeps(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *depsFlagValues, args []string) error {
	ctx := cmd.Context()

	if !slices.Contains([]string{formatText, formatJSON, formatYAML}, flags.format) {
		return fail(app.stderr, &ExitError{
			Code: exitUsage,
			Err:  fmt.Errorf("unknown format %q (valid: %s, %s, %s)", flags.format, formatText, formatJSON, formatYAML),
		}, rootFlags.verbose)
	}
	if flags.tree && flags.format != formatText {
		return fail(app.stderr, &ExitError{
			Code: exitUsage,
			Err:  fmt.Errorf("--tree prints text only and cannot be combined with --format %s", flags.format),
		}, rootFlags.verbose)
	}

	sess, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return fail(app.stderr, err, rootFlags.verbose)
	}

	opts, err := sess.distillOptions(cmd, &flags.resolveFlagValues, args)
	if err != nil {
		return fail(app.stderr, actionable(err, opts.Entry), sess.verbose)
	}

	res, err := distill.Resolve(ctx, opts)
	if err != nil {
		return fail(app.stderr, actionable(err, opts.Entry), sess.verbose)
	}

	switch {
	case flags.tree:
		fmt.Fprint(app.stdout, renderTree(res))
		return nil
	case flags.format == formatText:
		printModules(app.stdout, res)
		return nil
	}

	manifest := newDepsManifest(res)
	if len(manifest.LoadOrder) == 0 {
		sess.logger.Warn("require loop, manifest has no load order")
	}

	if err := writeManifest(app.stdout, manifest, flags.format); err != nil {
		return fail(app.stderr, err, sess.verbose)
	}
	return nil
}

// printModules lists modules in table order, then the excluded packages.
func printModules(w io.Writer, res *resolve.Result) {
	for _, entry := range res.Table.Entries() {
		fmt.Fprintf(w, "%s %s\n", CmdStyle.Render(entry.ID.String()), SubtitleStyle.Render(moduleFile(res, entry.ID)))
	}
	for _, id := range res.Excludes {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render(id.String()), SubtitleStyle.Render("(excluded)"))
	}
}

// renderTree draws the require edges from the entry module down. A module
// that already appears higher up on the same branch is marked and not
// expanded again. Excluded packages hang off the root.
func renderTree(res *resolve.Result) string {
	tree := treeprint.New()
	var walk func(branch treeprint.Tree, name string, path []string)
	walk = func(branch treeprint.Tree, name string, path []string) {
		for _, dep := range res.Graph.Dependencies(name) {
			if slices.Contains(path, dep) {
				branch.AddNode(dep + " (cycle)")
				continue
			}
			walk(branch.AddBranch(dep), dep, append(slices.Clip(path), dep))
		}
	}

	entry := res.EntryID.String()
	walk(tree.AddBranch(entry), entry, []string{entry})
	for _, id := range res.Excludes {
		tree.AddNode(id.String() + " (excluded)")
	}
	return tree.String()
}

func newDepsManifest(res *resolve.Result) depsManifest {
	manifest := depsManifest{
		Entry:    res.EntryPath,
		BaseDir:  res.BaseDir,
		Modules:  make([]manifestModule, 0, res.Table.Len()),
		Excludes: make([]string, 0, len(res.Excludes)),
	}

	for _, entry := range res.Table.Entries() {
		manifest.Modules = append(manifest.Modules, manifestModule{
			Name:     entry.ID.String(),
			Path:     moduleFile(res, entry.ID),
			Requires: res.Graph.Dependencies(entry.ID.String()),
		})
	}
	for _, id := range res.Excludes {
		manifest.Excludes = append(manifest.Excludes, id.String())
	}

	// A loop tolerated by the allow policy leaves no valid order.
	if order, err := res.Graph.LoadOrder(); err == nil {
		manifest.LoadOrder = order
	}

	return manifest
}

// moduleFile returns the source file of id.
func moduleFile(res *resolve.Result, id module.ID) string {
	if id == res.EntryID {
		return res.EntryPath
	}
	return id.Path(res.BaseDir)
}

func writeManifest(w io.Writer, manifest depsManifest, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(manifest); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New("unsupported manifest format: " + format)
	}
}
