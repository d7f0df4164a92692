// Package rename appends the .min suffix to file names.
package rename

import (
	"context"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
)

// MinSuffix is inserted between the file name and its extension.
const MinSuffix = ".min"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register fills the .min rename role.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleMinSuffix, &registry.RegisteredTransform{
		Module: "rename",
		New:    func(*project.Settings) (pipeline.Transform, error) { return Min{}, nil },
	})
}

// Min passes app.css on and adds a copy named app.min.css, so a production
// run leaves both the processed file and its minified sibling.
type Min struct{}

// Name returns the transform name.
func (Min) Name() string { return "rename.min" }

// Apply emits f and its renamed copy.
func (Min) Apply(_ context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	renamed := f.Clone()
	renamed.SetStem(f.Stem() + MinSuffix)
	return []*pipeline.File{f, renamed}, nil
}
