package project

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Scope is what expressions in the project file can see.
type Scope struct {
	Root string
	Mode config.Mode
	Env  config.Environment
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Sass       *Sass       `hcl:"sass,block"`
	Styles     *Styles     `hcl:"styles,block"`
	Scripts    *Scripts    `hcl:"scripts,block"`
	LiveReload *LiveReload `hcl:"livereload,block"`
	Remain     hcl.Body    `hcl:",remain"`
}

// Loader reads project files.
type Loader struct{}

// NewLoader creates a new project file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .hcl file found under paths (files or directories) and
// merges their blocks into one Settings value; a block in a later file
// replaces the same block from an earlier one. Paths that do not exist are
// skipped.
func (l *Loader) Load(ctx context.Context, scope Scope, paths ...string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Project loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered project files.", "count", len(files))

	parser := hclparse.NewParser()
	evalCtx := newEvalContext(scope)
	settings := &Settings{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse project file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode project file %s: %w", file, diags)
		}

		if root.Sass != nil {
			settings.Sass = *root.Sass
		}
		if root.Styles != nil {
			settings.Styles = *root.Styles
		}
		if root.Scripts != nil {
			settings.Scripts = *root.Scripts
		}
		if root.LiveReload != nil {
			settings.LiveReload = root.LiveReload
		}
	}

	settings.applyDefaults(scope.Root)
	logger.Debug("Project loading complete.", "files", len(files), "livereload", settings.LiveReload != nil)
	return settings, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, wasSeen := seen[f]; !wasSeen {
				allFiles = append(allFiles, f)
				seen[f] = struct{}{}
			}
		}
	}
	return allFiles, nil
}

// newEvalContext exposes the mode and root variables and the env function.
func newEvalContext(scope Scope) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"mode": cty.StringVal(scope.Mode.String()),
			"root": cty.StringVal(scope.Root),
		},
		Functions: map[string]function.Function{
			"env": envFunction(scope.Env),
		},
	}
}

// envFunction implements env(name[, fallback]). Empty variables count as
// unset, the same way the config resolver treats them.
func envFunction(env config.Environment) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "fallback", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			fallback := ""
			if len(args) > 1 {
				fallback = args[1].AsString()
			}
			return cty.StringVal(config.Option(env, args[0].AsString(), fallback)), nil
		},
	})
}
