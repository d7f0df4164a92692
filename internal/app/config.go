package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/assetgrid/internal/args"
	"github.com/specialistvlad/assetgrid/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Task string
	// Root is the project root every relative path is anchored at.
	Root string
	// ProjectFile is an explicit project file. When empty, the default file
	// in Root is used if it exists.
	ProjectFile string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Args is the Argument Store built from the invocation.
	Args *args.Store
	// Env is the environment snapshot. Nil means the process environment.
	Env config.Environment
}

// NewConfig validates cfg and makes Root absolute.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Task == "" {
		return nil, errors.New("a task name is required")
	}
	if !IsTask(cfg.Task) {
		return nil, fmt.Errorf("unknown task '%s'", cfg.Task)
	}
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %s: %w", cfg.Root, err)
	}
	cfg.Root = filepath.ToSlash(root)

	if cfg.Args == nil {
		cfg.Args = args.Parse(nil)
	}
	return &cfg, nil
}
