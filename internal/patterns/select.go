package patterns

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is a selected file together with the static directory of the glob
// that selected it. Output paths are computed relative to Base.
type Match struct {
	Path string
	Base string
}

// Relative returns Path relative to Base, slash-separated.
func (m Match) Relative() string {
	rel, err := filepath.Rel(filepath.FromSlash(m.Base), filepath.FromSlash(m.Path))
	if err != nil {
		return path.Base(m.Path)
	}
	return filepath.ToSlash(rel)
}

// Base returns the static directory prefix of a glob, before any meta
// character.
func Base(glob string) string {
	base, _ := doublestar.SplitPattern(glob)
	return base
}

// Match reports whether name is selected by the set. Patterns are evaluated
// in order and the last one that matches decides.
func (s Set) Match(name string) bool {
	name = filepath.ToSlash(name)
	selected := false
	for _, p := range s {
		ok, err := doublestar.Match(p.Glob, name)
		if err != nil || !ok {
			continue
		}
		selected = !p.Negated
	}
	return selected
}

// Bases returns the distinct base directories of the inclusive patterns, in
// first-seen order.
func (s Set) Bases() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.Includes() {
		b := Base(p.Glob)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}

// Select scans the filesystem for the files the set describes. Results keep
// pattern order; files found by one pattern are sorted. A file found by
// several patterns is reported once, with the base of the first. Missing
// directories select nothing.
func (s Set) Select() ([]Match, error) {
	seen := make(map[string]struct{})
	var out []Match

	for _, p := range s.Includes() {
		if !doublestar.ValidatePattern(p.Glob) {
			return nil, fmt.Errorf("invalid glob pattern %q", p.Glob)
		}

		base, rest := doublestar.SplitPattern(p.Glob)
		found, err := doublestar.Glob(os.DirFS(filepath.FromSlash(base)), rest, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", p.Glob, err)
		}
		sort.Strings(found)

		for _, rel := range found {
			full := path.Join(base, rel)
			if _, dup := seen[full]; dup {
				continue
			}
			if !s.Match(full) {
				continue
			}
			seen[full] = struct{}{}
			out = append(out, Match{Path: full, Base: base})
		}
	}

	return out, nil
}
