package pipeline

import (
	"fmt"

	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/patterns"
)

// Stage names, also used as log attributes.
const (
	StageCompileStyles     = "compile-styles"
	StagePostProcessStyles = "post-process-styles"
	StageBundleScripts     = "bundle-scripts"
	StageCleanStyles       = "clean-styles"
	StageCleanScripts      = "clean-scripts"
)

// CompileStylesVariants compiles sources the same way in both modes.
var CompileStylesVariants = Variants{
	Development: []Role{RoleStyleCompiler},
	Production:  []Role{RoleStyleCompiler},
}

// PostProcessStylesVariants returns the post-processing descriptor. The .min
// rename only exists in the production variant, and only when minified
// variants are requested.
func PostProcessStylesVariants(emitMinified bool) Variants {
	prod := []Role{RoleGroupMedia, RoleStyleMinifier, RolePrefixer}
	if emitMinified {
		prod = append(prod, RoleMinSuffix)
	}
	return Variants{
		Development: []Role{RoleSourceMapInit, RoleSourceMapWrite},
		Production:  prod,
	}
}

// BundleScriptsVariants returns the script descriptor.
func BundleScriptsVariants(emitMinified bool) Variants {
	prod := []Role{RoleScriptTranspiler, RoleScriptMinifier}
	if emitMinified {
		prod = append(prod, RoleMinSuffix)
	}
	return Variants{
		Development: []Role{RoleSourceMapInit, RoleSourceMapWrite},
		Production:  prod,
	}
}

// CompileStyles builds the stage compiling style sources into the style
// destination. Per-file compile errors are logged, not fatal.
func CompileStyles(cfg *config.Resolved, set patterns.Set, tc Toolchain) (*Stage, error) {
	steps, err := CompileStylesVariants.Resolve(cfg.Mode, tc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageCompileStyles, err)
	}
	return NewStage(StageCompileStyles, cfg.StyleDest, steps, set).TolerateCompileErrors(), nil
}

// PostProcessStyles builds the stage rewriting compiled style sheets in place.
func PostProcessStyles(cfg *config.Resolved, set patterns.Set, tc Toolchain) (*Stage, error) {
	steps, err := PostProcessStylesVariants(cfg.EmitMinified).Resolve(cfg.Mode, tc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StagePostProcessStyles, err)
	}
	return NewStage(StagePostProcessStyles, cfg.StyleDest, steps, set), nil
}

// BundleScripts builds the stage transpiling scripts, merged with the
// polyfill source, into the script destination.
func BundleScripts(cfg *config.Resolved, set patterns.Set, polyfill string, tc Toolchain) (*Stage, error) {
	steps, err := BundleScriptsVariants(cfg.EmitMinified).Resolve(cfg.Mode, tc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageBundleScripts, err)
	}
	stage := NewStage(StageBundleScripts, cfg.ScriptDest, steps, set)
	if polyfill != "" {
		stage.Require(polyfill)
	}
	return stage, nil
}

// CleanStyles removes the style destination.
func CleanStyles(cfg *config.Resolved) *Clean {
	return NewClean(StageCleanStyles, cfg.StyleDest)
}

// CleanScripts removes the script destination.
func CleanScripts(cfg *config.Resolved) *Clean {
	return NewClean(StageCleanScripts, cfg.ScriptDest)
}
