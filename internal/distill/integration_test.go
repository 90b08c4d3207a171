// SPDX-License-Identifier: MPL-2.0

package distill

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/luadistill/luadistill/internal/module"
)

const luaImage = "alpine:3.20"

// checkTestcontainersAvailable reports whether a container provider can be
// reached. Provider discovery panics on some hosts without an engine.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestBuild_BundleRunsInLua executes a produced bundle with a real Lua
// interpreter and checks module caching and native delegation.
func TestBuild_BundleRunsInLua(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping integration test: container provider not available")
	}

	dir := t.TempDir()
	sources := map[string]string{
		"main.lua": strings.Join([]string{
			`local helpers = require("utils.helpers")`,
			`local counter = require("counter")`,
			`local os = require("os")`,
			`helpers.greet()`,
			`print("count " .. counter.bump())`,
			`print("clock " .. type(os.time()))`,
			`return "done"`,
		}, "\n"),
		"utils/helpers.lua": strings.Join([]string{
			`local counter = require("counter")`,
			`counter.bump()`,
			`return { greet = function() print("hello from helpers") end }`,
		}, "\n"),
		"counter.lua": `local n = 0 return { bump = function() n = n + 1 return n end }`,
	}
	for name, content := range sources {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := Build(context.Background(), Options{
		Entry:    "main.lua",
		Cwd:      dir,
		Excludes: []module.ID{"os"},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: luaImage,
			Files: []testcontainers.ContainerFile{{
				HostFilePath:      res.Paths.Merged,
				ContainerFilePath: "/work/bundle.lua",
				FileMode:          0o644,
			}},
			Cmd: []string{"sh", "-c", "apk add --no-cache lua5.4 >/dev/null && lua5.4 -e 'print(dofile(\"/work/bundle.lua\"))'"},
			WaitingFor: wait.ForExit().WithExitTimeout(2 * time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start container: %v", err)
	}

	state, err := ctr.State(ctx)
	if err != nil {
		t.Fatalf("container state: %v", err)
	}

	logs, err := ctr.Logs(ctx)
	if err != nil {
		t.Fatalf("container logs: %v", err)
	}
	defer logs.Close()
	out, err := io.ReadAll(logs)
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}

	if state.ExitCode != 0 {
		t.Fatalf("lua exited with %d:\n%s", state.ExitCode, out)
	}
	for _, want := range []string{"hello from helpers", "count 2", "clock number", "done"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
