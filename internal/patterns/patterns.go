// Package patterns describes which files each asset category consumes.
//
// A Set is an ordered list of glob patterns. A pattern prefixed with "!"
// removes files matched by the patterns before it; a later inclusive pattern
// can add them back. Resolving a Set is pure and never touches the
// filesystem. Select performs the actual scan.
package patterns

import (
	"strings"

	"github.com/specialistvlad/assetgrid/internal/args"
	"github.com/specialistvlad/assetgrid/internal/config"
)

// NegationMarker prefixes an exclusion pattern.
const NegationMarker = "!"

// ModulesDir is the conventional sub-tree whose minified files are never
// reprocessed.
const ModulesDir = "modules"

// Category is a kind of asset with its own default pattern set.
type Category int

const (
	// Styles are the style-sheet sources fed to the compiler.
	Styles Category = iota
	// CompiledStyles are the compiler's .css output, fed to post-processing.
	CompiledStyles
	// Scripts are the script sources fed to the bundler.
	Scripts
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case Styles:
		return "styles"
	case CompiledStyles:
		return "compiled-styles"
	case Scripts:
		return "scripts"
	default:
		return "unknown"
	}
}

// OverrideKey is the argument key whose values replace the category's
// default patterns.
func (c Category) OverrideKey() string {
	switch c {
	case Styles:
		return "sass-files"
	case CompiledStyles:
		return "css-files"
	case Scripts:
		return "js-files"
	default:
		return ""
	}
}

// Pattern is a single glob. Glob is absolute and slash-separated.
type Pattern struct {
	Glob    string
	Negated bool
}

// Include returns an inclusive pattern.
func Include(glob string) Pattern { return Pattern{Glob: glob} }

// Exclude returns an exclusion pattern.
func Exclude(glob string) Pattern { return Pattern{Glob: glob, Negated: true} }

// String renders the pattern with its exclusion marker.
func (p Pattern) String() string {
	if p.Negated {
		return NegationMarker + p.Glob
	}
	return p.Glob
}

// Set is an ordered list of patterns.
type Set []Pattern

// Strings renders every pattern of the set.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.String()
	}
	return out
}

// Includes returns only the inclusive patterns, in order.
func (s Set) Includes() Set {
	var out Set
	for _, p := range s {
		if !p.Negated {
			out = append(out, p)
		}
	}
	return out
}

// Defaults returns the category's pattern set derived from its resolved
// directory.
func Defaults(c Category, cfg *config.Resolved) Set {
	switch c {
	case Styles:
		return Set{Include(cfg.StyleSrc + "/*.{scss,sass}")}
	case CompiledStyles:
		return outputDefaults(cfg.StyleDest, "css")
	case Scripts:
		return outputDefaults(cfg.ScriptSrc, "js")
	default:
		return nil
	}
}

// outputDefaults includes every top-level file with ext and excludes the
// minified files a previous production run may have generated.
func outputDefaults(dir, ext string) Set {
	return Set{
		Include(dir + "/*." + ext),
		Exclude(dir + "/*.min." + ext),
		Exclude(dir + "/" + ModulesDir + "/**/*.min." + ext),
	}
}

// Override returns the category's explicit override set, or nil when the
// store holds no values for the category's key. Entries are normalized
// against the project root; an entry's exclusion marker is preserved.
func Override(c Category, cfg *config.Resolved, store *args.Store) Set {
	vals := store.Get(c.OverrideKey(), nil)
	if len(vals) == 0 {
		return nil
	}

	set := make(Set, 0, len(vals))
	for _, v := range vals {
		negated := false
		if rest, ok := strings.CutPrefix(v, NegationMarker); ok {
			negated = true
			v = rest
		}
		set = append(set, Pattern{Glob: config.NormalizePath(cfg.Root, v), Negated: negated})
	}
	return set
}

// Resolve returns the pattern set a category consumes: the explicit override
// when one was given, otherwise the defaults. The two are never merged.
func Resolve(c Category, cfg *config.Resolved, store *args.Store) Set {
	if set := Override(c, cfg, store); set != nil {
		return set
	}
	return Defaults(c, cfg)
}
