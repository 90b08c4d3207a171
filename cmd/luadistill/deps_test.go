// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/luadistill/luadistill/internal/testutil"
)

func TestDeps_Text(t *testing.T) {
	t.Parallel()

	dir := helpersProject(t)
	res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "-x", "cjson")
	if code := exitCode(t, res.err); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
	}

	var names []string
	for line := range strings.Lines(res.stdout) {
		names = append(names, strings.Fields(line)[0])
	}
	want := []string{"lib.util", "helpers", "main.lua_distilled", "cjson"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("listed modules mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.stdout, "cjson (excluded)") {
		t.Errorf("stdout does not mark cjson as excluded:\n%s", res.stdout)
	}
}

func TestDeps_Tree(t *testing.T) {
	t.Parallel()

	dir := helpersProject(t)
	res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "-x", "cjson", "--tree")
	if code := exitCode(t, res.err); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
	}

	for _, want := range []string{"main.lua_distilled", "helpers", "lib.util", "cjson (excluded)"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("tree missing %q:\n%s", want, res.stdout)
		}
	}
	if strings.Index(res.stdout, "helpers") > strings.Index(res.stdout, "lib.util") {
		t.Errorf("lib.util should be nested below helpers:\n%s", res.stdout)
	}
}

func TestDeps_JSONManifest(t *testing.T) {
	t.Parallel()

	dir := helpersProject(t)
	res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "-x", "cjson", "--format", "json")
	if code := exitCode(t, res.err); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
	}

	var got depsManifest
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, res.stdout)
	}

	var names []string
	for _, m := range got.Modules {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"lib.util", "helpers", "main.lua_distilled"}, names); diff != "" {
		t.Errorf("modules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"lib.util", "helpers", "main.lua_distilled"}, got.LoadOrder); diff != "" {
		t.Errorf("load order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cjson"}, got.Excludes); diff != "" {
		t.Errorf("excludes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"lib.util"}, got.Modules[1].Requires); diff != "" {
		t.Errorf("helpers requires mismatch (-want +got):\n%s", diff)
	}
}

func TestDeps_YAMLManifest(t *testing.T) {
	t.Parallel()

	dir := helpersProject(t)
	res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "-x", "cjson", "-f", "yaml")
	if code := exitCode(t, res.err); code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
	}

	var got depsManifest
	if err := yaml.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, res.stdout)
	}
	if got.BaseDir == "" || !strings.HasSuffix(got.Entry, "main.lua") {
		t.Errorf("manifest entry = %q, base_dir = %q", got.Entry, got.BaseDir)
	}
	if diff := cmp.Diff([]string{"cjson"}, got.Excludes); diff != "" {
		t.Errorf("excludes mismatch (-want +got):\n%s", diff)
	}
}

func TestDeps_UnknownFormat(t *testing.T) {
	t.Parallel()

	dir := helpersProject(t)
	res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "--format", "toml")
	if code := exitCode(t, res.err); code != exitUsage {
		t.Fatalf("exit code = %d, want %d", code, exitUsage)
	}
	if !strings.Contains(res.stderr, `unknown format "toml"`) {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestDeps_TreeRejectsManifestFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{formatJSON, formatYAML} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			dir := helpersProject(t)
			res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "--tree", "--format", format)
			if code := exitCode(t, res.err); code != exitUsage {
				t.Fatalf("exit code = %d, want %d", code, exitUsage)
			}
			if !strings.Contains(res.stderr, "cannot be combined with --format "+format) {
				t.Errorf("stderr = %q", res.stderr)
			}
			if res.stdout != "" {
				t.Errorf("stdout = %q, want nothing", res.stdout)
			}
		})
	}
}

func TestDeps_Cycle(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.lua": "require(\"a\")\n",
		"a.lua":    "require(\"b\")\nreturn {}\n",
		"b.lua":    "require(\"a\")\nreturn {}\n",
	}

	t.Run("fail", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, files)
		res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua")
		if code := exitCode(t, res.err); code != exitFatal {
			t.Fatalf("exit code = %d, want %d", code, exitFatal)
		}
		if !strings.Contains(res.stderr, "a -> b -> a") {
			t.Errorf("stderr does not name the cycle:\n%s", res.stderr)
		}
	})

	t.Run("allow", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, files)
		res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "--cycle-policy", "allow", "--format", "json")
		if code := exitCode(t, res.err); code != 0 {
			t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
		}

		var got depsManifest
		if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.LoadOrder != nil {
			t.Errorf("LoadOrder = %v, want none for a require loop", got.LoadOrder)
		}
		if len(got.Modules) != 3 {
			t.Errorf("got %d modules, want 3", len(got.Modules))
		}
	})

	t.Run("allow tree", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, files)
		res := runCLI(t, dir, &stubConfigProvider{}, "deps", "main.lua", "--cycle-policy", "allow", "--tree")
		if code := exitCode(t, res.err); code != 0 {
			t.Fatalf("exit code = %d, stderr:\n%s", code, res.stderr)
		}
		if !strings.Contains(res.stdout, "a (cycle)") {
			t.Errorf("tree does not mark the loop:\n%s", res.stdout)
		}
	})
}
