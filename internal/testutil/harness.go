package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/assetgrid/internal/app"
	"github.com/specialistvlad/assetgrid/internal/cli"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of a task run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// NewProject writes files into a fresh temporary project root and returns
// the root, slash-separated. File names are relative to the root.
func NewProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.ToSlash(root)
}

// RunTask runs an invocation against root using a background context.
func RunTask(t *testing.T, root string, argv []string, env config.Environment, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunTaskWithContext(context.Background(), t, root, argv, env, modules...)
}

// RunTaskWithContext parses argv like the command line does, points the
// project root at root and runs the task. env replaces the process
// environment; modules default to Modules().
func RunTaskWithContext(ctx context.Context, t *testing.T, root string, argv []string, env config.Environment, modules ...registry.Module) *HarnessResult {
	t.Helper()

	if env == nil {
		env = config.Environment{}
	}
	if len(modules) == 0 {
		modules = Modules()
	}

	argv = append(append([]string(nil), argv...), "--root="+root, "--log-level=debug", "--log-format=text")
	cfg, shouldExit, err := cli.Parse(argv, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit, "invocation only printed usage")
	cfg.Env = env

	logBuffer := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("ASSETGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var (
		testApp  *app.App
		panicErr any
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp, err = app.NewApp(logBuffer, cfg, modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}
	if err != nil {
		return &HarnessResult{LogOutput: logBuffer.String(), Err: err}
	}

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}

// ReadFile returns the contents of a file below root.
func ReadFile(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.FromSlash(root), filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
