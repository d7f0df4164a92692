// Package sourcemaps attaches source maps to files and writes them next to
// the output as external .map files.
package sourcemaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/project"
	"github.com/specialistvlad/assetgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register fills the source-map init and write roles.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTransform(pipeline.RoleSourceMapInit, &registry.RegisteredTransform{
		Module: "sourcemaps",
		New:    func(*project.Settings) (pipeline.Transform, error) { return Init{}, nil },
	})
	r.RegisterTransform(pipeline.RoleSourceMapWrite, &registry.RegisteredTransform{
		Module: "sourcemaps",
		New:    func(*project.Settings) (pipeline.Transform, error) { return Write{}, nil },
	})
}

// existingURL matches a trailing sourceMappingURL comment left by an earlier run.
var existingURL = regexp.MustCompile(`\n?(?:/\*# sourceMappingURL=[^\n]*\*/|//# sourceMappingURL=[^\n]*)\s*$`)

// Init attaches an identity source map: every generated line maps to the
// same line of the source.
type Init struct{}

// Name returns the transform name.
func (Init) Name() string { return "sourcemaps.init" }

// Apply attaches the map.
func (Init) Apply(_ context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	f.Contents = existingURL.ReplaceAll(f.Contents, nil)
	f.SourceMap = &pipeline.SourceMap{
		Version:        3,
		File:           f.Basename(),
		Sources:        []string{f.Relative()},
		SourcesContent: []string{string(f.Contents)},
		Names:          []string{},
		Mappings:       identityMappings(f.Contents),
	}
	return []*pipeline.File{f}, nil
}

// identityMappings encodes one segment per line, at column zero, pointing at
// the same line of source 0.
func identityMappings(contents []byte) string {
	lines := bytes.Count(contents, []byte("\n")) + 1
	var b strings.Builder
	b.WriteString("AAAA")
	for i := 1; i < lines; i++ {
		b.WriteString(";AACA")
	}
	return b.String()
}

// Write emits the attached map as <name>.map next to the file and links it
// with a sourceMappingURL comment. Files without a map pass through.
type Write struct{}

// Name returns the transform name.
func (Write) Name() string { return "sourcemaps.write" }

// Apply writes the map.
func (Write) Apply(_ context.Context, f *pipeline.File) ([]*pipeline.File, error) {
	if f.SourceMap == nil {
		return []*pipeline.File{f}, nil
	}

	sm := *f.SourceMap
	sm.File = f.Basename()
	data, err := json.Marshal(sm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source map for %s: %w", f.Path, err)
	}

	mapFile := f.Clone()
	mapFile.Path = f.Path + ".map"
	mapFile.Contents = data
	mapFile.SourceMap = nil

	mapName := mapFile.Basename()
	var comment string
	if f.Ext() == ".css" {
		comment = "/*# sourceMappingURL=" + mapName + " */"
	} else {
		comment = "//# sourceMappingURL=" + mapName
	}
	if len(f.Contents) > 0 && !bytes.HasSuffix(f.Contents, []byte("\n")) {
		f.Contents = append(f.Contents, '\n')
	}
	f.Contents = append(f.Contents, comment+"\n"...)
	f.SourceMap = nil

	return []*pipeline.File{f, mapFile}, nil
}
