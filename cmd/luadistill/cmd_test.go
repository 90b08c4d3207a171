// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/luadistill/luadistill/internal/config"
	"github.com/luadistill/luadistill/internal/testutil"
)

type stubConfigProvider struct {
	cfg *config.Config
	err error
}

func (s *stubConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return s.cfg, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree in cwd without going through fang.
func runCLI(t *testing.T, cwd string, provider ConfigProvider, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app, err := NewApp(Dependencies{
		Config: provider,
		Stdout: &stdout,
		Stderr: &stderr,
		Getwd:  func() (string, error) { return cwd, nil },
	})
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err = root.ExecuteContext(context.Background())

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %v (%T) is not an *ExitError", err, err)
	}
	return exitErr.Code
}

func helpersProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"main.lua":         "local helpers = require(\"helpers\")\nlocal json = require(\"cjson\")\nprint(helpers.greet())\n",
		"helpers.lua":      "local util = require(\"lib.util\")\nreturn { greet = function() return util.name() end }\n",
		"lib/util.lua":     "return { name = function() return \"hello\" end }\n",
		"lib/unused.lua":   "return {}\n",
		"notes/README.txt": "not lua\n",
	})
	return dir
}
