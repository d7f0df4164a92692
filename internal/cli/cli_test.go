package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/assetgrid/internal/app"
	"github.com/specialistvlad/assetgrid/internal/args"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	root := filepath.ToSlash(t.TempDir())

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectCode     int
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy path with tool options",
			args: []string{
				"build-everything", "--prod", "--root=" + root, "--project=config/assets.hcl",
				"--log-level=debug", "--log-format=json", "--healthcheck-port=8080",
			},
			expectedConfig: &app.Config{
				Task:            "build-everything",
				Root:            root,
				ProjectFile:     "config/assets.hcl",
				LogLevel:        "debug",
				LogFormat:       "json",
				HealthcheckPort: 8080,
			},
		},
		{
			name: "Defaults",
			args: []string{"clean", "--root=" + root},
			expectedConfig: &app.Config{
				Task:      "clean",
				Root:      root,
				LogLevel:  "info",
				LogFormat: "text",
			},
		},
		{
			name:       "No arguments prints usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				assert.Contains(t, output, "Usage:")
				assert.Contains(t, output, "build-compiled-styles-only")
			},
		},
		{
			name:        "Help task",
			args:        []string{"help"},
			expectExit:  true,
			checkOutput: func(t *testing.T, output string) { assert.Contains(t, output, "Overrides:") },
		},
		{
			name:        "Help flag after task",
			args:        []string{"watch", "--help"},
			expectExit:  true,
			checkOutput: func(t *testing.T, output string) { assert.Contains(t, output, "Tasks:") },
		},
		{name: "Unknown task", args: []string{"deploy"}, expectCode: ExitCodeUsage},
		{name: "Flag before task", args: []string{"--prod", "build-everything"}, expectCode: ExitCodeUsage},
		{name: "Invalid log format", args: []string{"clean", "--log-format=xml"}, expectCode: ExitCodeUsage},
		{name: "Invalid log level", args: []string{"clean", "--log-level=trace"}, expectCode: ExitCodeUsage},
		{name: "Invalid port", args: []string{"clean", "--healthcheck-port=http"}, expectCode: ExitCodeUsage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.expectCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.expectCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectExit, shouldExit)
			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				opts := cmpopts.IgnoreFields(app.Config{}, "Args")
				if diff := cmp.Diff(tc.expectedConfig, cfg, opts); diff != "" {
					t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestParse_OverridesReachTheStore(t *testing.T) {
	t.Parallel()

	cfg, _, err := Parse([]string{"watch", "--only-selected", "--sass-files=a.scss,b.scss", "--root=/p"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.True(t, cfg.Args.Flag("only-selected"))
	assert.Equal(t, []string{"a.scss", "b.scss"}, cfg.Args.Get("sass-files", nil))

	override, ok := cfg.Args.Lookup("sass-files")
	require.True(t, ok)
	assert.Equal(t, args.KindList, override.Kind)
}
