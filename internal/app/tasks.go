package app

import (
	"fmt"

	"github.com/specialistvlad/assetgrid/internal/patterns"
	"github.com/specialistvlad/assetgrid/internal/pipeline"
	"github.com/specialistvlad/assetgrid/internal/task"
	"github.com/specialistvlad/assetgrid/internal/watch"
)

// Task names accepted on the command line.
const (
	TaskBuildStyles         = "build-styles-only"
	TaskBuildCompiledStyles = "build-compiled-styles-only"
	TaskBuildScripts        = "build-scripts-only"
	TaskWatch               = "watch"
	TaskClean               = "clean"
	TaskBuildEverything     = "build-everything"
)

// FlagOnlySelected makes watch observe the explicit style override set.
const FlagOnlySelected = "only-selected"

// TaskInfo describes a task for usage output.
type TaskInfo struct {
	Name    string
	Summary string
}

// Tasks lists every task in usage order.
var Tasks = []TaskInfo{
	{TaskBuildStyles, "clean the style destination, then compile style sources"},
	{TaskBuildCompiledStyles, "post-process compiled style sheets in place"},
	{TaskBuildScripts, "clean the script destination, then bundle scripts with the polyfill"},
	{TaskWatch, "recompile style sources whenever they change"},
	{TaskClean, "remove the style and script destinations"},
	{TaskBuildEverything, "build styles and scripts in parallel"},
}

// IsTask reports whether name is a known task.
func IsTask(name string) bool {
	for _, t := range Tasks {
		if t.Name == name {
			return true
		}
	}
	return false
}

// composeTasks builds the stages once and wires them into the named tasks.
func (a *App) composeTasks() (*task.Set, error) {
	cfg, store := a.resolved, a.config.Args
	tc := a.registry.Toolchain(a.settings)

	styles := patterns.Resolve(patterns.Styles, cfg, store)
	compiled := patterns.Resolve(patterns.CompiledStyles, cfg, store)
	scripts := patterns.Resolve(patterns.Scripts, cfg, store)

	compile, err := pipeline.CompileStyles(cfg, styles, tc)
	if err != nil {
		return nil, err
	}
	post, err := pipeline.PostProcessStyles(cfg, compiled, tc)
	if err != nil {
		return nil, err
	}
	bundle, err := pipeline.BundleScripts(cfg, scripts, a.settings.Scripts.Polyfill, tc)
	if err != nil {
		return nil, err
	}
	cleanStyles := pipeline.CleanStyles(cfg)
	cleanScripts := pipeline.CleanScripts(cfg)

	watched := patterns.Defaults(patterns.Styles, cfg)
	if store.Flag(FlagOnlySelected) {
		watched = styles
	}
	notifiers := make([]watch.Notifier, len(a.notifiers))
	for i, n := range a.notifiers {
		notifiers[i] = n
	}

	set := task.NewSet()
	set.Register(task.Series(TaskBuildStyles, cleanStyles, compile))
	set.Register(renamed(TaskBuildCompiledStyles, post))
	set.Register(task.Series(TaskBuildScripts, cleanScripts, bundle))
	set.Register(renamed(TaskWatch, watch.NewLoop(watched, compile, notifiers...)))
	set.Register(task.Parallel(TaskClean, cleanStyles, cleanScripts))
	set.Register(task.Parallel(TaskBuildEverything,
		task.Series("styles", cleanStyles, compile, post),
		task.Series("scripts", cleanScripts, bundle),
	))

	for _, info := range Tasks {
		if _, err := set.Lookup(info.Name); err != nil {
			panic(fmt.Sprintf("task '%s' is listed but not composed", info.Name))
		}
	}
	return set, nil
}

// renamed exposes t under another name.
func renamed(name string, t task.Task) task.Task {
	return task.Func{Label: name, Fn: t.Run}
}
