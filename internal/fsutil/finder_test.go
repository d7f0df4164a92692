package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	for _, name := range []string{"a.hcl", "nested/b.hcl", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "a.hcl"), filepath.Join(root, "nested", "b.hcl")}, files)
}

func TestFindFilesByExtension_SingleFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "assetgrid.hcl")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	files, err := FindFilesByExtension(file, ".hcl")

	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestRemoveTree(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := filepath.Join(t.TempDir(), "css")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modules", "a.css"), []byte("a{}"), 0o644))

	// --- Act ---
	existed, err := RemoveTree(dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, existed)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveTree_Missing(t *testing.T) {
	t.Parallel()

	existed, err := RemoveTree(filepath.Join(t.TempDir(), "does-not-exist"))

	require.NoError(t, err)
	assert.False(t, existed)
}
