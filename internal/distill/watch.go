// SPDX-License-Identifier: MPL-2.0

package distill

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/luadistill/luadistill/internal/output"
	"github.com/luadistill/luadistill/internal/watch"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is the quiet period before a rebuild.
	Debounce time.Duration
	// Ignore are extra doublestar globs relative to the entry directory.
	Ignore []string
	// OnBuild is called after every build, including the initial one.
	OnBuild func(*Result, error)
}

// Watch builds once, then rebuilds from scratch whenever a .lua file under the
// entry's directory changes. The bundle and its siblings are ignored so a
// build never retriggers itself. Watch returns when ctx is cancelled.
func Watch(ctx context.Context, opts Options, wopts WatchOptions) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	report := wopts.OnBuild
	if report == nil {
		report = func(*Result, error) {}
	}

	report(Build(ctx, opts))

	entryPath, err := filepath.Abs(opts.EntryPath())
	if err != nil {
		return fmt.Errorf("failed to resolve entry path: %w", err)
	}
	baseDir := filepath.Dir(entryPath)
	paths := output.Derive(entryPath, opts.Output, opts.Cwd)

	w, err := watch.New(watch.Config{
		BaseDir:  baseDir,
		Ignore:   append(outputIgnores(baseDir, paths), wopts.Ignore...),
		Debounce: wopts.Debounce,
		Logger:   opts.Logger,
		OnChange: func(ctx context.Context, changed []string) error {
			opts.Logger.Info("rebuilding", "changed", changed)
			report(Build(ctx, opts))
			return nil
		},
	})
	if err != nil {
		return err
	}

	opts.Logger.Info("watching", "dir", baseDir)
	return w.Run(ctx)
}

// outputIgnores lists the build outputs that live under baseDir as watch
// ignore patterns.
func outputIgnores(baseDir string, paths output.Paths) []string {
	var ignores []string
	for _, p := range []string{paths.Merged, paths.Minified, paths.MergedJIT, paths.MinifiedJIT} {
		rel, err := filepath.Rel(baseDir, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		ignores = append(ignores, globEscaper.Replace(filepath.ToSlash(rel)))
	}
	return ignores
}

var globEscaper = strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `{`, `\{`)
