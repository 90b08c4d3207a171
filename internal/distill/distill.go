// SPDX-License-Identifier: MPL-2.0

package distill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/luadistill/luadistill/internal/emit"
	"github.com/luadistill/luadistill/internal/module"
	"github.com/luadistill/luadistill/internal/output"
	"github.com/luadistill/luadistill/internal/postprocess"
	"github.com/luadistill/luadistill/internal/resolve"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type (
	// Options configures a build.
	Options struct {
		// Entry is the entry .lua file. Relative paths are resolved against Cwd.
		Entry string
		// Output is a bundle file path (with extension) or a directory. Empty
		// means Cwd.
		Output string
		// Cwd anchors relative paths. Empty means the process working directory.
		Cwd string
		// Excludes are left to the host's native loader.
		Excludes []module.ID
		// CyclePolicy is passed to the resolver.
		CyclePolicy resolve.CyclePolicy
		// Plan selects the post-processing steps.
		Plan postprocess.Plan
		// Version is shown in the bundle header.
		Version string
		// Clock stamps the bundle header. nil means time.Now.
		Clock func() time.Time
		// Fs is where sources are read and the bundle is written. nil means
		// the OS filesystem. Post-processing tools always see the OS filesystem.
		Fs afero.Fs
		// Logger receives progress at info level and discovery at debug level.
		Logger *log.Logger
		// Stdout and Stderr receive the post-processing tools' output.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result describes a finished build.
	Result struct {
		// Resolution is the resolver's output.
		Resolution *resolve.Result
		// Paths are the derived output locations.
		Paths output.Paths
		// Size is the bundle size in bytes.
		Size int64
		// Steps are the post-processing outcomes, in execution order.
		Steps []postprocess.Result
	}
)

// Build resolves opts.Entry, writes the bundle and runs the post-processing
// plan.
//
// A resolution failure returns a nil Result and writes nothing. A failing
// post-processing step returns the Result together with an error wrapping
// postprocess.ErrStepFailed; the bundle is on disk in that case.
func Build(ctx context.Context, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	resolution, err := resolveEntry(ctx, opts)
	if err != nil {
		return nil, err
	}

	paths := output.Derive(resolution.EntryPath, opts.Output, opts.Cwd)
	opts.Logger.Info("merge", "from", resolution.EntryPath, "to", paths.Merged)
	if len(resolution.Excludes) > 0 {
		opts.Logger.Info("ignore packages", "names", resolution.Excludes)
	}
	opts.Logger.Info("scanned modules", "count", resolution.Table.Len(), "modules", resolution.Table.IDs())

	bundle := emit.New(emit.WithVersion(opts.Version), emit.WithClock(opts.Clock)).Render(emit.Bundle{
		EntryID:  resolution.EntryID,
		Modules:  resolution.Table,
		Excludes: resolution.Excludes,
	})

	if err := opts.Fs.MkdirAll(paths.Dir(), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", paths.Dir(), err)
	}
	if err := afero.WriteFile(opts.Fs, paths.Merged, []byte(bundle), filePerm); err != nil {
		return nil, fmt.Errorf("failed to write bundle %s: %w", paths.Merged, err)
	}

	result := &Result{
		Resolution: resolution,
		Paths:      paths,
		Size:       int64(len(bundle)),
	}

	steps := opts.Plan.Steps(paths)
	if len(steps) == 0 {
		return result, nil
	}

	runner := postprocess.NewRunner(paths.Dir(), opts.Stdout, opts.Stderr)
	result.Steps = runner.RunAll(ctx, steps)
	for _, res := range result.Steps {
		if res.Err != nil {
			opts.Logger.Error("post-processing failed", "step", res.Step.Name, "output", res.Step.Output, "err", res.Err)
			continue
		}
		opts.Logger.Info("post-processed", "step", res.Step.Name, "output", res.Step.Output)
	}

	if failed := postprocess.Failed(result.Steps); len(failed) > 0 {
		return result, errors.Join(failed...)
	}
	return result, nil
}

// Resolve runs only the resolution stage of a build.
func Resolve(ctx context.Context, opts Options) (*resolve.Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return resolveEntry(ctx, opts)
}

// EntryPath returns opts.Entry anchored at opts.Cwd.
func (opts Options) EntryPath() string {
	if opts.Entry == "" || filepath.IsAbs(opts.Entry) {
		return opts.Entry
	}
	return filepath.Join(opts.Cwd, opts.Entry)
}

func (opts Options) withDefaults() (Options, error) {
	if opts.Cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("failed to determine working directory: %w", err)
		}
		opts.Cwd = wd
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return opts, nil
}

func resolveEntry(ctx context.Context, opts Options) (*resolve.Result, error) {
	resolver, err := resolve.New(resolve.Options{
		Fs:          opts.Fs,
		Excludes:    opts.Excludes,
		CyclePolicy: opts.CyclePolicy,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(ctx, opts.EntryPath())
}
