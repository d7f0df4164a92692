package config

import (
	"path/filepath"

	"github.com/specialistvlad/assetgrid/internal/args"
)

// Environment variable names understood by the resolver.
const (
	EnvMode         = "ENVIRONMENT"
	EnvStyleSrc     = "SASS_SRC_PATH"
	EnvStyleDest    = "CSS_DEST_PATH"
	EnvScriptDest   = "JS_DEST_PATH"
	EnvScriptSrc    = "JS_SRC_PATH"
	EnvEmitMinified = "MAKE_DOT_MIN_FILES"
)

// ProductionValue is the only ENVIRONMENT value that selects production mode.
const ProductionValue = "production"

// FlagProd is the override key whose presence, with or without values,
// forces production mode.
const FlagProd = "prod"

// Default relative directories.
const (
	DefaultStyleSrc   = "sass"
	DefaultStyleDest  = "css"
	DefaultScriptDest = "js"
)

// Mode selects which variant of every pipeline stage runs.
type Mode int

const (
	// Development keeps output readable and emits source maps.
	Development Mode = iota
	// Production groups, minifies, prefixes and transpiles.
	Production
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	if m == Production {
		return "production"
	}
	return "development"
}

// Resolved is the effective configuration of one invocation. All paths are
// absolute and slash-separated.
type Resolved struct {
	Root         string
	StyleSrc     string
	StyleDest    string
	ScriptSrc    string
	ScriptDest   string
	Mode         Mode
	EmitMinified bool
}

// Production reports whether the production variant is selected.
func (r *Resolved) Production() bool {
	return r.Mode == Production
}

// Option returns the value of name from the environment snapshot, or def
// when the variable is absent or empty. The override store is never read.
func Option(env Environment, name, def string) string {
	if v, ok := env[name]; ok && v != "" {
		return v
	}
	return def
}

// IsProduction reports whether production mode is forced by either source.
// The two checks are a disjunction: neither can switch the other off.
func IsProduction(store *args.Store, env Environment) bool {
	return store.Has(FlagProd) || env[EnvMode] == ProductionValue
}

// NormalizePath anchors p at root unless it is already absolute, cleans it
// and converts it to forward slashes.
func NormalizePath(root, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// Resolve computes the effective configuration. root must be absolute.
func Resolve(store *args.Store, env Environment, root string) *Resolved {
	root = filepath.ToSlash(filepath.Clean(root))

	scriptDest := NormalizePath(root, Option(env, EnvScriptDest, DefaultScriptDest))

	mode := Development
	if IsProduction(store, env) {
		mode = Production
	}

	return &Resolved{
		Root:         root,
		StyleSrc:     NormalizePath(root, Option(env, EnvStyleSrc, DefaultStyleSrc)),
		StyleDest:    NormalizePath(root, Option(env, EnvStyleDest, DefaultStyleDest)),
		ScriptDest:   scriptDest,
		ScriptSrc:    NormalizePath(root, Option(env, EnvScriptSrc, scriptDest)),
		Mode:         mode,
		EmitMinified: Option(env, EnvEmitMinified, "") != "",
	}
}
