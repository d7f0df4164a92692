package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/assetgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWatch starts the watch task in the background. The returned function
// stops it and returns its result.
func runWatch(t *testing.T, root string, argv ...string) func() *testutil.HarnessResult {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *testutil.HarnessResult, 1)
	go func() {
		done <- testutil.RunTaskWithContext(ctx, t, root, append([]string{"watch"}, argv...), nil)
	}()

	return func() *testutil.HarnessResult {
		cancel()
		select {
		case r := <-done:
			return r
		case <-time.After(10 * time.Second):
			t.Fatal("watch did not stop")
			return nil
		}
	}
}

func write(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(filepath.FromSlash(root), filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatch_RecompilesOnChange(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.NewProject(t, map[string]string{"sass/app.scss": "a { color: red; }"})
	stop := runWatch(t, root)

	// --- Act ---
	// Keep touching the source until the watcher is up and picks it up.
	require.Eventually(t, func() bool {
		write(t, root, "sass/app.scss", "a { color: blue; }")
		data, err := os.ReadFile(filepath.Join(filepath.FromSlash(root), "css", "app.css"))
		return err == nil && string(data) == "a { color: blue; }"
	}, 10*time.Second, 200*time.Millisecond)

	// --- Assert ---
	result := stop()
	require.NoError(t, result.Err, result.LogOutput)
	assert.Contains(t, result.LogOutput, "Rebuilding.")
	assert.Contains(t, result.LogOutput, "Watch stopped.")
}

func TestWatch_OnlySelectedIgnoresOtherSources(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.NewProject(t, map[string]string{
		"sass/app.scss":   "a { color: red; }",
		"sass/other.scss": "b { color: red; }",
	})
	stop := runWatch(t, root, "--only-selected", "--sass-files=sass/app.scss")

	// --- Act ---
	require.Eventually(t, func() bool {
		write(t, root, "sass/app.scss", "a { color: blue; }")
		_, err := os.Stat(filepath.Join(filepath.FromSlash(root), "css", "app.css"))
		return err == nil
	}, 10*time.Second, 200*time.Millisecond)

	// --- Assert ---
	result := stop()
	require.NoError(t, result.Err, result.LogOutput)
	assert.NoFileExists(t, root+"/css/other.css", "only the selected source is compiled")
}
