package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/app"
	"github.com/specialistvlad/assetgrid/internal/args"
)

// ExitCodeUsage is returned for invalid invocations.
const ExitCodeUsage = 2

// Options read from the Argument Store that configure the tool itself.
const (
	OptRoot            = "root"
	OptProject         = "project"
	OptLogLevel        = "log-level"
	OptLogFormat       = "log-format"
	OptHealthcheckPort = "healthcheck-port"
	OptHelp            = "help"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, a ...any) *ExitError {
	return &ExitError{Code: ExitCodeUsage, Message: fmt.Sprintf(format, a...)}
}

// Usage writes the help text to output.
func Usage(output io.Writer) {
	fmt.Fprint(output, `
AssetGrid - builds style sheets and scripts for a web project.

Usage:
  assetgrid <task> [--overrides...]

Tasks:
`)
	for _, t := range app.Tasks {
		fmt.Fprintf(output, "  %-28s %s\n", t.Name, t.Summary)
	}
	fmt.Fprint(output, `
Overrides:
  --prod                       production mode (also ENVIRONMENT=production)
  --only-selected              watch only the --sass-files patterns
  --sass-files=a,b             style source patterns
  --css-files=a,b              compiled style sheet patterns
  --js-files=a,b               script patterns ("!" prefix excludes)
  --root=dir                   project root (default: working directory)
  --project=file               project file (default: <root>/assetgrid.hcl)
  --log-level=level            debug, info, warn or error (default: info)
  --log-format=format          text or json (default: text)
  --healthcheck-port=N         serve /health on port N while running

Environment:
  ENVIRONMENT, SASS_SRC_PATH, CSS_DEST_PATH, JS_DEST_PATH, JS_SRC_PATH,
  MAKE_DOT_MIN_FILES (also read from <root>/.env)
`)
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(argv []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if len(argv) == 0 {
		slog.Debug("No task provided, printing usage and exiting.")
		Usage(output)
		return nil, true, nil
	}

	taskName := argv[0]
	switch taskName {
	case "-h", "--help", "help":
		Usage(output)
		return nil, true, nil
	}
	if strings.HasPrefix(taskName, "-") {
		return nil, false, usageError("the task name must come first, got %q", taskName)
	}

	store := args.Parse(argv[1:])
	if store.Flag(OptHelp) {
		Usage(output)
		return nil, true, nil
	}
	slog.Debug("Arguments parsed successfully.", "task", taskName)

	logFormat := strings.ToLower(store.Value(OptLogFormat, app.LogFormatText))
	if logFormat != app.LogFormatText && logFormat != app.LogFormatJSON {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(store.Value(OptLogLevel, "info"))
	if _, err := app.ParseLevel(logLevel); err != nil {
		return nil, false, usageError("%s", err)
	}

	port, err := strconv.Atoi(store.Value(OptHealthcheckPort, "0"))
	if err != nil || port < 0 {
		return nil, false, usageError("invalid healthcheck-port: must be a non-negative integer")
	}

	root := store.Value(OptRoot, "")
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, false, fmt.Errorf("failed to determine working directory: %w", err)
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Task:            taskName,
		Root:            root,
		ProjectFile:     store.Value(OptProject, ""),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: port,
		Args:            store,
	})
	if err != nil {
		return nil, false, usageError("%s", err)
	}

	slog.Debug("CLI parser finished successfully.", "task", config.Task, "root", config.Root)
	return config, false, nil
}
