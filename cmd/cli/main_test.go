package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/assetgrid/internal/cli"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"publish"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitCodeUsage, exitErr.Code)
	assert.Contains(t, err.Error(), "unknown task 'publish'")
}

func TestRun_InvalidProjectFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	invalidHCL := "styles {\n  compatibility = \n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "assetgrid.hcl"), []byte(invalidHCL), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"clean", "--root=" + root})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, cli.ExitCodeUsage, exitErr.Code)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestRun_CleanRemovesDestinations(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css", "modules"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "app.js"), []byte("x"), 0o644))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"clean", "--root=" + root, "--log-level=debug"})

	// --- Assert ---
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(root, "css"))
	assert.NoDirExists(t, filepath.Join(root, "js"))
	assert.Contains(t, out.String(), "Task finished")
}
