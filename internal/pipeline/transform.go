package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/assetgrid/internal/config"
)

// Role names a collaborator slot in a stage. Modules register one transform
// per role.
type Role string

const (
	RoleStyleCompiler    Role = "style_compiler"
	RoleSourceMapInit    Role = "sourcemap_init"
	RoleSourceMapWrite   Role = "sourcemap_write"
	RoleGroupMedia       Role = "group_media_queries"
	RoleStyleMinifier    Role = "style_minifier"
	RolePrefixer         Role = "autoprefixer"
	RoleScriptTranspiler Role = "script_transpiler"
	RoleScriptMinifier   Role = "script_minifier"
	RoleMinSuffix        Role = "min_suffix"
)

// AllRoles lists every role a complete toolchain provides.
var AllRoles = []Role{
	RoleStyleCompiler,
	RoleSourceMapInit,
	RoleSourceMapWrite,
	RoleGroupMedia,
	RoleStyleMinifier,
	RolePrefixer,
	RoleScriptTranspiler,
	RoleScriptMinifier,
	RoleMinSuffix,
}

// ErrUnknownRole is returned by a Toolchain that has nothing registered for
// a role.
var ErrUnknownRole = errors.New("no transform registered for role")

// Transform processes one file. It returns the files to pass on: usually
// the same file, possibly with siblings (a source map), or none to drop it.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *File) ([]*File, error)
}

// TransformFunc adapts a function to the Transform interface.
type TransformFunc struct {
	Label string
	Fn    func(ctx context.Context, f *File) ([]*File, error)
}

// Name returns the label of the transform.
func (t TransformFunc) Name() string { return t.Label }

// Apply calls the wrapped function.
func (t TransformFunc) Apply(ctx context.Context, f *File) ([]*File, error) {
	return t.Fn(ctx, f)
}

// Toolchain resolves roles to transforms.
type Toolchain interface {
	Transform(role Role) (Transform, error)
}

// CompileError is a recoverable, per-file failure of the style compiler.
// Stages that tolerate compile errors log it and continue with the batch.
type CompileError struct {
	Path    string
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("compile %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("compile %s: %s", e.Path, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Variants is the two-variant step descriptor of a stage.
type Variants struct {
	Development []Role
	Production  []Role
}

// For returns the roles of the variant selected by mode.
func (v Variants) For(mode config.Mode) []Role {
	if mode == config.Production {
		return v.Production
	}
	return v.Development
}

// Resolve looks up the transforms of the selected variant.
func (v Variants) Resolve(mode config.Mode, tc Toolchain) ([]Transform, error) {
	roles := v.For(mode)
	steps := make([]Transform, 0, len(roles))
	for _, role := range roles {
		t, err := tc.Transform(role)
		if err != nil {
			return nil, fmt.Errorf("%s variant: %w", mode, err)
		}
		steps = append(steps, t)
	}
	return steps, nil
}
