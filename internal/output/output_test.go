// SPDX-License-Identifier: MPL-2.0

package output

import (
	"path/filepath"
	"testing"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	cwd := filepath.FromSlash("/work")
	entry := filepath.FromSlash("/work/src/main.lua")

	tests := []struct {
		name   string
		output string
		want   Paths
	}{
		{
			name:   "empty output uses cwd",
			output: "",
			want: Paths{
				Merged:      filepath.FromSlash("/work/main.merged.lua"),
				Minified:    filepath.FromSlash("/work/main.min.lua"),
				MergedJIT:   filepath.FromSlash("/work/main.merged.luajit"),
				MinifiedJIT: filepath.FromSlash("/work/main.min.luajit"),
			},
		},
		{
			name:   "relative directory",
			output: "dist",
			want: Paths{
				Merged:      filepath.FromSlash("/work/dist/main.merged.lua"),
				Minified:    filepath.FromSlash("/work/dist/main.min.lua"),
				MergedJIT:   filepath.FromSlash("/work/dist/main.merged.luajit"),
				MinifiedJIT: filepath.FromSlash("/work/dist/main.min.luajit"),
			},
		},
		{
			name:   "explicit file",
			output: filepath.FromSlash("/out/game.lua"),
			want: Paths{
				Merged:      filepath.FromSlash("/out/game.lua"),
				Minified:    filepath.FromSlash("/out/game.lua.min.lua"),
				MergedJIT:   filepath.FromSlash("/out/game.luajit"),
				MinifiedJIT: filepath.FromSlash("/out/game.lua.min.luajit"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Derive(entry, tt.output, cwd); got != tt.want {
				t.Errorf("Derive() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaths_Dir(t *testing.T) {
	t.Parallel()

	p := Derive(filepath.FromSlash("/src/main.lua"), "build/out", filepath.FromSlash("/work"))
	if got, want := p.Dir(), filepath.FromSlash("/work/build/out"); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}
