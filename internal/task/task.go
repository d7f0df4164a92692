// Package task composes pipeline stages into named, runnable tasks.
package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownTask is returned when a task name is not registered.
var ErrUnknownTask = errors.New("unknown task")

// Task is anything that can be run by name: a stage, a clean step or a
// composition of them.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Func adapts a function to the Task interface.
type Func struct {
	Label string
	Fn    func(ctx context.Context) error
}

// Name returns the label of the task.
func (f Func) Name() string { return f.Label }

// Run calls the wrapped function.
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// series runs its tasks one after another.
type series struct {
	name  string
	tasks []Task
}

// Series returns a task that runs tasks in order and stops at the first
// failure; later tasks do not run.
func Series(name string, tasks ...Task) Task {
	return &series{name: name, tasks: tasks}
}

func (s *series) Name() string { return s.name }

func (s *series) Run(ctx context.Context) error {
	for _, t := range s.tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runLogged(ctx, t); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// parallel runs its tasks concurrently.
type parallel struct {
	name  string
	tasks []Task
}

// Parallel returns a task that starts every task at once and waits for all
// of them. The first failure cancels the context of the others and is
// returned.
func Parallel(name string, tasks ...Task) Task {
	return &parallel{name: name, tasks: tasks}
}

func (p *parallel) Name() string { return p.name }

func (p *parallel) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range p.tasks {
		g.Go(func() error {
			return runLogged(gctx, t)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}
	return nil
}

// runLogged runs one task, logging its start and duration.
func runLogged(ctx context.Context, t Task) error {
	logger := ctxlog.FromContext(ctx).With("task", t.Name())
	logger.Debug("Task started.")
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		logger.Debug("Task failed.", "duration", time.Since(start), "error", err)
		return err
	}
	logger.Debug("Task finished.", "duration", time.Since(start))
	return nil
}

// Set is the table of runnable tasks.
type Set struct {
	tasks map[string]Task
}

// NewSet creates an empty task table.
func NewSet() *Set {
	return &Set{tasks: make(map[string]Task)}
}

// Register adds t under its name. Registering a name twice is a programming
// error and panics.
func (s *Set) Register(t Task) {
	if _, exists := s.tasks[t.Name()]; exists {
		panic(fmt.Sprintf("task '%s' already registered", t.Name()))
	}
	s.tasks[t.Name()] = t
}

// Lookup returns the task registered under name.
func (s *Set) Lookup(name string) (Task, error) {
	t, ok := s.tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownTask, name)
	}
	return t, nil
}

// Names returns the registered task names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
