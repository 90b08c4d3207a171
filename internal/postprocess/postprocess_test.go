// SPDX-License-Identifier: MPL-2.0

package postprocess

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luadistill/luadistill/internal/output"
)

func testPaths() output.Paths {
	return output.Derive(filepath.FromSlash("/src/main.lua"), "dist", filepath.FromSlash("/work"))
}

func TestPlan_Steps(t *testing.T) {
	t.Parallel()

	paths := testPaths()

	tests := []struct {
		name string
		plan Plan
		want [][]string
	}{
		{
			name: "nothing",
			plan: Plan{},
			want: nil,
		},
		{
			name: "minify only",
			plan: Plan{Minify: true},
			want: [][]string{{"luasrcdiet", paths.Merged, "-o", paths.Minified}},
		},
		{
			name: "jit only",
			plan: Plan{JIT: true, Tools: Tools{LuaJIT: "/opt/luajit/bin/luajit"}},
			want: [][]string{{"/opt/luajit/bin/luajit", "-b", paths.Merged, paths.MergedJIT}},
		},
		{
			name: "minify and jit",
			plan: Plan{Minify: true, JIT: true, Tools: Tools{LuaSrcDiet: "LuaSrcDiet.lua"}},
			want: [][]string{
				{"LuaSrcDiet.lua", paths.Merged, "-o", paths.Minified},
				{"luajit", "-b", paths.Merged, paths.MergedJIT},
				{"luajit", "-b", paths.Minified, paths.MinifiedJIT},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got [][]string
			for _, s := range tt.plan.Steps(paths) {
				got = append(got, s.Args)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Steps() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStep_Script(t *testing.T) {
	t.Parallel()

	s := Step{Args: []string{"luajit", "-b", "/tmp/my dir/a.lua", "$HOME"}}
	got, err := s.Script()
	if err != nil {
		t.Fatalf("Script() error: %v", err)
	}
	if want := `luajit -b '/tmp/my dir/a.lua' '$HOME'`; got != want {
		t.Errorf("Script() = %q, want %q", got, want)
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	r := NewRunner(t.TempDir(), &stdout, nil)

	if err := r.Run(context.Background(), Step{Name: "echo", Args: []string{"echo", "a b", "$HOME"}}); err != nil {
		t.Fatalf("Run(echo) error: %v", err)
	}
	if got := stdout.String(); got != "a b $HOME\n" {
		t.Errorf("stdout = %q", got)
	}

	err := r.Run(context.Background(), Step{Name: "exit", Args: []string{"exit", "3"}})
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("expected ErrStepFailed, got %v", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %v", err)
	}

	if err := r.Run(context.Background(), Step{Name: "empty"}); !errors.Is(err, ErrStepFailed) {
		t.Errorf("expected ErrStepFailed for empty command, got %v", err)
	}
}

func TestRunner_RunAllContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	r := NewRunner(t.TempDir(), nil, nil)
	results := r.RunAll(context.Background(), []Step{
		{Name: "first", Args: []string{"false"}},
		{Name: "second", Args: []string{"true"}},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err == nil || results[0].ExitCode != 1 {
		t.Errorf("first result = %+v, want failure with exit code 1", results[0])
	}
	if results[1].Err != nil {
		t.Errorf("second result error: %v", results[1].Err)
	}
	if errs := Failed(results); len(errs) != 1 {
		t.Errorf("Failed() returned %d errors, want 1", len(errs))
	}
}
