package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/assetgrid/internal/patterns"
)

// File is one asset flowing through a stage.
type File struct {
	// Path is absolute and slash-separated. Transforms that rename the file
	// change Path; the directory part stays under Base.
	Path string
	// Base is the static directory of the glob that selected the file.
	Base     string
	Contents []byte
	// SourceMap is attached by the source-map init step and consumed by the
	// write step.
	SourceMap *SourceMap
	// Minified is set by minifying transforms so later printers keep the
	// output compact.
	Minified bool
}

// SourceMap is a revision 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// ReadFile loads a selected file.
func ReadFile(m patterns.Match) (*File, error) {
	data, err := os.ReadFile(filepath.FromSlash(m.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.Path, err)
	}
	return &File{Path: m.Path, Base: m.Base, Contents: data}, nil
}

// Relative returns the path of the file below its base.
func (f *File) Relative() string {
	return patterns.Match{Path: f.Path, Base: f.Base}.Relative()
}

// Basename returns the file name including its extension.
func (f *File) Basename() string {
	return path.Base(f.Path)
}

// Ext returns the extension of the file, including the dot.
func (f *File) Ext() string {
	return path.Ext(f.Path)
}

// Stem returns the file name without its extension.
func (f *File) Stem() string {
	return strings.TrimSuffix(f.Basename(), f.Ext())
}

// SetExt replaces the extension of the file.
func (f *File) SetExt(ext string) {
	f.Path = strings.TrimSuffix(f.Path, f.Ext()) + ext
}

// SetStem replaces the file name before the extension.
func (f *File) SetStem(stem string) {
	f.Path = path.Join(path.Dir(f.Path), stem+f.Ext())
}

// Clone returns a copy of the file that shares no mutable state.
func (f *File) Clone() *File {
	c := *f
	c.Contents = append([]byte(nil), f.Contents...)
	if f.SourceMap != nil {
		sm := *f.SourceMap
		c.SourceMap = &sm
	}
	return &c
}

// WriteTo writes the file below dest, keeping its path relative to Base.
func (f *File) WriteTo(dest string) (string, error) {
	target := filepath.Join(filepath.FromSlash(dest), filepath.FromSlash(f.Relative()))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, f.Contents, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
