// Package esbuild minifies and prefixes style sheets and transpiles and
// minifies scripts with the esbuild transform API.
package esbuild

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register fills the minifier, prefixer and script roles.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleStyleMinifier, &registry.RegisteredTransform{
		Module: "esbuild",
		New: func(s *project.Settings) (pipeline.Transform, error) {
			return NewStyleMinifier(s.Styles.Compatibility)
		},
	})
	r.RegisterTransform(pipeline.RolePrefixer, &registry.RegisteredTransform{
		Module: "esbuild",
		New: func(s *project.Settings) (pipeline.Transform, error) {
			return NewPrefixer(s.Styles.Browsers)
		},
	})
	r.RegisterTransform(pipeline.RoleScriptTranspiler, &registry.RegisteredTransform{
		Module: "esbuild",
		New: func(s *project.Settings) (pipeline.Transform, error) {
			return NewScriptTranspiler(s.Scripts.Target)
		},
	})
	r.RegisterTransform(pipeline.RoleScriptMinifier, &registry.RegisteredTransform{
		Module: "esbuild",
		New: func(s *project.Settings) (pipeline.Transform, error) {
			return NewScriptMinifier(s.Scripts.Target)
		},
	})
}

// Transform runs one esbuild transform over a file.
type Transform struct {
	name string
	opts api.TransformOptions
	// minify marks the output as minified.
	minify bool
	// keepMinified prints compactly when the input was already minified.
	keepMinified bool
}

// Name returns the transform name.
func (t *Transform) Name() string { return t.name }

// Apply transforms the contents of f.
func (t *Transform) Apply(ctx context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := t.opts
	opts.Sourcefile = f.Path
	if t.keepMinified && f.Minified {
		opts.MinifyWhitespace = true
		opts.LegalComments = api.LegalCommentsNone
	}

	result := api.Transform(string(f.Contents), opts)
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%s: %s", t.name, formatMessages(result.Errors))
	}

	f.Contents = result.Code
	if t.minify {
		f.Minified = true
	}
	return []*pipeline.File{f}, nil
}

// NewStyleMinifier minifies CSS for the given compatibility level, such as
// "ie8" or "*" for no constraints. Comments are dropped.
func NewStyleMinifier(compatibility string) (*Transform, error) {
	engines, err := ParseCompatibility(compatibility)
	if err != nil {
		return nil, err
	}
	return &Transform{
		name: "esbuild.minify-css",
		opts: api.TransformOptions{
			Loader:           api.LoaderCSS,
			MinifyWhitespace: true,
			MinifySyntax:     true,
			LegalComments:    api.LegalCommentsNone,
			Engines:          engines,
		},
		minify: true,
	}, nil
}

// NewPrefixer adds the vendor prefixes the browsers need.
func NewPrefixer(browsers []string) (*Transform, error) {
	engines, err := ParseBrowsers(browsers)
	if err != nil {
		return nil, err
	}
	return &Transform{
		name: "esbuild.prefix-css",
		opts: api.TransformOptions{
			Loader:  api.LoaderCSS,
			Engines: engines,
		},
		keepMinified: true,
	}, nil
}

// NewScriptTranspiler lowers scripts to target, such as "es2015".
func NewScriptTranspiler(target string) (*Transform, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return &Transform{
		name: "esbuild.transpile-js",
		opts: api.TransformOptions{
			Loader: api.LoaderJS,
			Target: t,
		},
	}, nil
}

// NewScriptMinifier minifies scripts without raising their syntax above
// target.
func NewScriptMinifier(target string) (*Transform, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return &Transform{
		name: "esbuild.minify-js",
		opts: api.TransformOptions{
			Loader:            api.LoaderJS,
			Target:            t,
			MinifyWhitespace:  true,
			MinifyIdentifiers: true,
			MinifySyntax:      true,
			LegalComments:     api.LegalCommentsNone,
		},
		minify: true,
	}, nil
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if loc := m.Location; loc != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
