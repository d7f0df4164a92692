package integration_tests

import (
	"testing"

	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileErrorDoesNotStopTheBatch(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.NewProject(t, map[string]string{
		"sass/a.scss": "a { color: red; }",
		"sass/b.scss": testutil.BrokenMarker + " \"no\";",
		"sass/c.scss": "c { color: blue; }",
	})

	// --- Act ---
	result := testutil.RunTask(t, root, []string{"build-styles-only"}, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.FileExists(t, root+"/css/a.css")
	assert.NoFileExists(t, root+"/css/b.css")
	assert.FileExists(t, root+"/css/c.css")
	assert.Contains(t, result.LogOutput, "Compile failed")
	assert.Contains(t, result.LogOutput, "b.scss")
}

func TestMissingPolyfillFailsTheTask(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{"src/js/app.js": "x()"})

	result := testutil.RunTask(t, root, []string{"build-scripts-only"}, config.Environment{config.EnvScriptSrc: "src/js"})

	require.ErrorIs(t, result.Err, pipeline.ErrMissingSource)
}

func TestFailureInOneBranchFailsBuildEverything(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.NewProject(t, map[string]string{"sass/app.scss": "a { color: red; }"})

	// --- Act ---
	result := testutil.RunTask(t, root, []string{"build-everything"}, nil)

	// --- Assert ---
	require.ErrorIs(t, result.Err, pipeline.ErrMissingSource)
	assert.Contains(t, result.Err.Error(), "build-everything")
}

func TestExplicitProjectFileMustExist(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, nil)

	result := testutil.RunTask(t, root, []string{"clean", "--project=missing.hcl"}, nil)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "missing.hcl")
}

func TestInvalidProjectSettingsAreReported(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"assetgrid.hcl": `styles { browsers = ["netscape 4"] }`,
	})

	result := testutil.RunTask(t, root, []string{"build-compiled-styles-only", "--prod"}, nil)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "unsupported browser")
}

func TestMissingModulePanics(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, nil)

	result := testutil.RunTask(t, root, []string{"clean"}, nil, &testutil.FakeCompilerModule{})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "sourcemap_init")
}
