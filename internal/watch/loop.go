package watch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/patterns"
	"github.com/specialistvlad/assetgrid/internal/task"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 100 * time.Millisecond

// Notifier is told about every finished rebuild.
type Notifier interface {
	Notify(ctx context.Context, changed []string) error
}

// Loop re-runs a build whenever a file selected by its pattern set changes.
// Builds never overlap: changes arriving during a build are collected and
// trigger at most one follow-up build.
type Loop struct {
	set       patterns.Set
	build     task.Task
	notifiers []Notifier
	debounce  time.Duration
	ready     chan struct{}
	readyOnce sync.Once
}

// NewLoop creates a loop that watches set and runs build.
func NewLoop(set patterns.Set, build task.Task, notifiers ...Notifier) *Loop {
	return &Loop{
		set:       set,
		build:     build,
		notifiers: notifiers,
		debounce:  DefaultDebounce,
		ready:     make(chan struct{}),
	}
}

// WithDebounce sets the quiet period.
func (l *Loop) WithDebounce(d time.Duration) *Loop {
	l.debounce = d
	return l
}

// Ready is closed once every base directory is being watched by the first
// run.
func (l *Loop) Ready() <-chan struct{} { return l.ready }

// Name returns the name of the loop as a task.
func (l *Loop) Name() string { return "watch" }

// Run watches until ctx is cancelled. A failed build is logged and the loop
// keeps watching. Cancellation is a normal stop and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("task", l.Name())

	w, err := NewWatcher(l.set.Match)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, base := range l.set.Bases() {
		if err := w.WatchRecursive(base); err != nil {
			if errors.Is(err, ErrPathNotExist) {
				logger.Warn("Watch directory does not exist, skipping.", "dir", base)
				continue
			}
			return fmt.Errorf("failed to watch %s: %w", base, err)
		}
		watched++
	}
	logger.Info("Watching for changes.", "patterns", l.set.Strings(), "dirs", watched)
	l.readyOnce.Do(func() { close(l.ready) })

	pending := make(map[string]struct{})
	timer := time.NewTimer(l.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped.")
			return nil

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.Debug("Change detected.", "file", ev.Path)
			pending[ev.Path] = struct{}{}
			timer.Reset(l.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := drain(pending)
			l.rebuild(ctx, changed)
		}
	}
}

// rebuild runs the build once and tells the notifiers. It blocks the loop, so
// events arriving meanwhile wait in the watcher buffer for the next round.
func (l *Loop) rebuild(ctx context.Context, changed []string) {
	logger := ctxlog.FromContext(ctx).With("task", l.Name())
	logger.Info("Rebuilding.", "changed", changed)

	if err := l.build.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("Rebuild failed.", "error", err)
		return
	}

	for _, n := range l.notifiers {
		if err := n.Notify(ctx, changed); err != nil {
			logger.Warn("Notifier failed.", "error", err)
		}
	}
}

func drain(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for p := range pending {
		out = append(out, p)
		delete(pending, p)
	}
	sort.Strings(out)
	return out
}
