// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/luadistill/luadistill/internal/dag"
	"github.com/luadistill/luadistill/internal/module"
	"github.com/luadistill/luadistill/internal/scan"
)

type (
	// Options configures a Resolver. Zero values select the defaults.
	Options struct {
		// Fs is the filesystem modules are read from. Defaults to the OS filesystem.
		Fs afero.Fs
		// Scanner extracts require candidates. Defaults to scan.NewPatternScanner().
		Scanner scan.Scanner
		// Excludes are package names left to the host's native loader.
		Excludes []module.ID
		// CyclePolicy selects how require loops are handled. Defaults to CycleFail.
		CyclePolicy CyclePolicy
		// Logger receives discovery events at debug level. Defaults to a
		// logger that discards everything.
		Logger *log.Logger
	}

	// Resolver collects the modules reachable from an entry file.
	Resolver struct {
		fs       afero.Fs
		scanner  scan.Scanner
		excludes []module.ID
		policy   CyclePolicy
		logger   *log.Logger
	}

	// Result is the outcome of a successful resolution pass.
	Result struct {
		// EntryPath is the absolute path of the entry file.
		EntryPath string
		// EntryID is the synthetic identifier of the entry module.
		EntryID module.ID
		// BaseDir is the directory identifiers are resolved against.
		BaseDir string
		// Table holds every resolved module; the entry module is last.
		Table *module.Table
		// Excludes is the exclusion set in declaration order.
		Excludes []module.ID
		// Graph records every accepted require edge by identifier.
		Graph *dag.Graph
	}

	// frame is one file on the resolution stack.
	frame struct {
		path string
		id   module.ID
	}

	// pass holds the mutable state of one Resolve call.
	pass struct {
		*Resolver
		baseDir  string
		filter   *scan.Filter
		table    *module.Table
		graph    *dag.Graph
		stack    []frame
		inFlight map[string]int
	}
)

// New creates a Resolver.
func New(opts Options) (*Resolver, error) {
	if err := opts.CyclePolicy.Validate(); err != nil {
		return nil, err
	}
	for _, name := range opts.Excludes {
		if err := name.Validate(); err != nil {
			return nil, fmt.Errorf("exclude list: %w", err)
		}
	}

	r := &Resolver{
		fs:       opts.Fs,
		scanner:  opts.Scanner,
		excludes: opts.Excludes,
		policy:   opts.CyclePolicy,
		logger:   opts.Logger,
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.scanner == nil {
		r.scanner = scan.NewPatternScanner()
	}
	if r.policy == "" {
		r.policy = CycleFail
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r, nil
}

// ValidateEntry checks that entryPath names an existing .lua file and returns
// its absolute path.
func (r *Resolver) ValidateEntry(entryPath string) (string, error) {
	if entryPath == "" {
		return "", &MissingEntryError{Reason: "no entry file given"}
	}

	absPath, err := filepath.Abs(entryPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := r.fs.Stat(absPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", &MissingEntryError{Path: absPath, Reason: "file does not exist"}
	case err != nil:
		return "", fmt.Errorf("failed to stat entry file %s: %w", absPath, err)
	case info.IsDir():
		return "", &MissingEntryError{Path: absPath, Reason: "path is a directory"}
	case !module.HasExt(absPath):
		return "", &MissingEntryError{Path: absPath, Reason: fmt.Sprintf("extension %q is not %q", filepath.Ext(absPath), module.Ext)}
	}

	return absPath, nil
}

// Resolve collects the entry file and everything it transitively requires.
// It stops at the first missing dependency (or cycle, under CycleFail); no
// partial result is returned.
func (r *Resolver) Resolve(ctx context.Context, entryPath string) (*Result, error) {
	absEntry, err := r.ValidateEntry(entryPath)
	if err != nil {
		return nil, err
	}

	p := &pass{
		Resolver: r,
		baseDir:  filepath.Dir(absEntry),
		filter:   scan.NewFilter(r.excludes),
		table:    module.NewTable(),
		graph:    dag.New(),
		inFlight: make(map[string]int),
	}

	entryID := module.EntryID(absEntry)
	p.graph.AddNode(entryID.String())

	source, err := p.resolveFile(ctx, absEntry, entryID, absEntry)
	if err != nil {
		return nil, err
	}
	p.table.Add(entryID, source)

	return &Result{
		EntryPath: absEntry,
		EntryID:   entryID,
		BaseDir:   p.baseDir,
		Table:     p.table,
		Excludes:  p.filter.Excludes(),
		Graph:     p.graph,
	}, nil
}

// resolveFile reads path, resolves each of its new dependencies into the
// table, and returns the file's unmodified source for the caller to register.
func (p *pass) resolveFile(ctx context.Context, path string, id module.ID, requiredBy string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p.logger.Debug("scan", "file", path, "required_by", requiredBy)

	info, err := p.fs.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.IsDir()):
		return "", &MissingDependencyError{Path: path, ID: id, RequiredBy: requiredBy}
	case err != nil:
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if p.policy == CycleFail {
		if idx, ok := p.inFlight[path]; ok {
			return "", p.cycleFrom(idx, id)
		}
		p.inFlight[path] = len(p.stack)
		defer delete(p.inFlight, path)
	}
	p.stack = append(p.stack, frame{path: path, id: id})
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	res := scan.File(p.scanner, p.filter, path, string(data))
	p.logMatches(path, res.Matches)

	for _, dep := range res.Requires {
		p.graph.AddDependency(id.String(), dep.String())
		if p.table.Has(dep) {
			continue
		}

		src, err := p.resolveFile(ctx, dep.Path(p.baseDir), dep, path)
		if err != nil {
			return "", err
		}
		p.table.Add(dep, src)
	}

	return res.Source, nil
}

// cycleFrom builds the CycleError for re-entering the frame at idx via id.
func (p *pass) cycleFrom(idx int, id module.ID) *CycleError {
	cycle := make([]string, 0, len(p.stack)-idx+1)
	for _, f := range p.stack[idx:] {
		cycle = append(cycle, f.id.String())
	}
	return &CycleError{Cycle: append(cycle, id.String())}
}

// logMatches emits one discovery event per (file, identifier) pair, in order
// of first appearance. A pair that is required anywhere in the file is
// reported as a require even if an earlier occurrence was ignored.
func (p *pass) logMatches(path string, matches []scan.Match) {
	events := make([]scan.Match, 0, len(matches))
	seen := make(map[module.ID]int, len(matches))
	for _, m := range matches {
		if m.Decision == scan.Duplicate {
			continue
		}
		if i, ok := seen[m.ID]; ok {
			if m.Decision == scan.Required {
				events[i] = m
			}
			continue
		}
		seen[m.ID] = len(events)
		events = append(events, m)
	}

	for _, m := range events {
		if m.Decision == scan.Required {
			p.logger.Debug("require", "module", m.ID, "file", path, "line", m.Line)
			continue
		}
		p.logger.Debug("ignore", "module", m.ID, "file", path, "line", m.Line, "reason", m.Decision)
	}
}
