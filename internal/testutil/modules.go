package testutil

import (
	"context"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
	"github.com/specialistvlad/assetgrid/modules/esbuild"
	"github.com/specialistvlad/assetgrid/modules/mediaqueries"
	"github.com/specialistvlad/assetgrid/modules/rename"
	"github.com/specialistvlad/assetgrid/modules/sourcemaps"
)

// BrokenMarker makes FakeCompilerModule fail on a source containing it.
const BrokenMarker = "@error"

// FakeCompilerModule fills the style compiler role without the sass binary.
// It copies sources verbatim, renames them to .css, skips partials and
// reports a CompileError for sources containing BrokenMarker.
type FakeCompilerModule struct{}

// Register fills the style compiler role.
func (m *FakeCompilerModule) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleStyleCompiler, &registry.RegisteredTransform{
		Module: "fake-compiler",
		New: func(*project.Settings) (pipeline.Transform, error) {
			return pipeline.TransformFunc{Label: "fake-compiler", Fn: fakeCompile}, nil
		},
	})
}

func fakeCompile(_ context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	if strings.HasPrefix(f.Basename(), "_") {
		return nil, nil
	}
	if strings.Contains(string(f.Contents), BrokenMarker) {
		return nil, &pipeline.CompileError{Path: f.Path, Message: "Error: " + BrokenMarker + " found"}
	}
	f.SetExt(".css")
	return []*pipeline.File{f}, nil
}

// Modules returns the core modules with the style compiler replaced by
// FakeCompilerModule.
func Modules() []registry.Module {
	return []registry.Module{
		&FakeCompilerModule{},
		&sourcemaps.Module{},
		&mediaqueries.Module{},
		&esbuild.Module{},
		&rename.Module{},
	}
}
