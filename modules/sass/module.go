// Package sass compiles SCSS and indented-syntax sources by running the
// sass command line compiler.
package sass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register fills the style compiler role.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleStyleCompiler, &registry.RegisteredTransform{
		Module: "sass",
		New: func(s *project.Settings) (pipeline.Transform, error) {
			return NewCompiler(s.Sass), nil
		},
	})
}

// Compiler pipes one source at a time through the sass binary.
type Compiler struct {
	command   string
	args      []string
	loadPaths []string
}

// NewCompiler creates a compiler from the project settings.
func NewCompiler(cfg project.Sass) *Compiler {
	return &Compiler{command: cfg.Command, args: cfg.Args, loadPaths: cfg.LoadPaths}
}

// Name returns the transform name.
func (c *Compiler) Name() string { return "sass" }

// Apply compiles f into CSS. Partials (names starting with "_") produce no
// output. A non-zero exit of the compiler is a CompileError carrying its
// diagnostics; failing to start it at all is fatal.
func (c *Compiler) Apply(ctx context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	if strings.HasPrefix(f.Basename(), "_") {
		return nil, nil
	}

	args := c.commandArgs(f)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running sass.", "file", f.Path, "command", c.command, "args", args)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Stdin = bytes.NewReader(f.Contents)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &pipeline.CompileError{
				Path:    f.Path,
				Message: strings.TrimSpace(stderr.String()),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to run %s: %w", c.command, err)
	}

	f.Contents = stdout.Bytes()
	f.SetExt(".css")
	return []*pipeline.File{f}, nil
}

func (c *Compiler) commandArgs(f *pipeline.File) []string {
	args := append([]string(nil), c.args...)
	args = append(args, "--stdin", "--no-source-map", "--load-path="+path.Dir(f.Path))
	for _, lp := range c.loadPaths {
		args = append(args, "--load-path="+lp)
	}
	if f.Ext() == ".sass" {
		args = append(args, "--indented")
	}
	return args
}
