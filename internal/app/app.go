package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/specialistvlad/assetgrid/internal/task"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	resolved   *config.Resolved
	settings   *project.Settings
	registry   *registry.Registry
	notifiers  []registry.Notifier
	tasks      *task.Set
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Modules default to the core modules compiled into the binary.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	env := cfg.Env
	if env == nil {
		env = config.EnvironmentFromList(os.Environ())
	}
	env, err := config.MergeDotEnv(env, cfg.Root)
	if err != nil {
		return nil, err
	}

	resolved := config.Resolve(cfg.Args, env, cfg.Root)
	logger.Info("Configuration resolved.",
		"root", resolved.Root,
		"mode", resolved.Mode.String(),
		"style_src", resolved.StyleSrc,
		"style_dest", resolved.StyleDest,
		"script_src", resolved.ScriptSrc,
		"script_dest", resolved.ScriptDest,
		"emit_minified", resolved.EmitMinified,
	)

	settings, err := loadProject(ctx, cfg, resolved, env)
	if err != nil {
		return nil, err
	}

	// Create and populate the registry with Go handlers.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Validate the integrity of the registry.
	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (a module is missing from the binary), so we panic.
		panic(err)
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		resolved: resolved,
		settings: settings,
		registry: reg,
	}

	if cfg.Task == TaskWatch {
		a.notifiers, err = reg.Notifiers(settings)
		if err != nil {
			return nil, fmt.Errorf("failed to configure notifiers: %w", err)
		}
	}

	a.tasks, err = a.composeTasks()
	if err != nil {
		return nil, fmt.Errorf("failed to compose tasks: %w", err)
	}
	logger.Debug("Tasks composed.", "tasks", a.tasks.Names())

	return a, nil
}

// loadProject reads the project file. An explicitly named file must exist;
// the default one is optional.
func loadProject(ctx context.Context, cfg *Config, resolved *config.Resolved, env config.Environment) (*project.Settings, error) {
	path := cfg.ProjectFile
	if path == "" {
		path = filepath.Join(filepath.FromSlash(cfg.Root), project.DefaultFile)
	} else {
		path = filepath.FromSlash(config.NormalizePath(cfg.Root, path))
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("project file %s: %w", path, err)
		}
	}

	scope := project.Scope{Root: resolved.Root, Mode: resolved.Mode, Env: env}
	settings, err := project.NewLoader().Load(ctx, scope, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load project file: %w", err)
	}
	return settings, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Resolved returns the effective configuration.
func (a *App) Resolved() *config.Resolved {
	return a.resolved
}

// Settings returns the loaded project settings.
func (a *App) Settings() *project.Settings {
	return a.settings
}

// closeNotifiers releases notifier connections.
func (a *App) closeNotifiers() error {
	var errs []error
	for _, n := range a.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
