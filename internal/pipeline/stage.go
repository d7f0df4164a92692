package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/patterns"
)

// ErrMissingSource is returned when a file a stage requires does not exist.
var ErrMissingSource = errors.New("required source not found")

// Stage is a named unit of the build: select, transform, write.
type Stage struct {
	name     string
	dest     string
	steps    []Transform
	inputs   []patterns.Set
	required []string
	tolerant bool
}

// NewStage builds a stage that reads the union of inputs, applies steps in
// order to each file and writes the results below dest.
func NewStage(name, dest string, steps []Transform, inputs ...patterns.Set) *Stage {
	return &Stage{name: name, dest: dest, steps: steps, inputs: inputs}
}

// Require marks literal source paths that must exist when the stage runs.
// They are also added to the stage's inputs.
func (s *Stage) Require(paths ...string) *Stage {
	for _, p := range paths {
		s.required = append(s.required, p)
		s.inputs = append(s.inputs, patterns.Set{patterns.Include(p)})
	}
	return s
}

// TolerateCompileErrors makes the stage log CompileErrors and skip the
// failing file instead of failing.
func (s *Stage) TolerateCompileErrors() *Stage {
	s.tolerant = true
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// Dest returns the destination directory.
func (s *Stage) Dest() string { return s.dest }

// Steps returns the names of the selected transforms, in order.
func (s *Stage) Steps() []string {
	names := make([]string, len(s.steps))
	for i, t := range s.steps {
		names[i] = t.Name()
	}
	return names
}

// Inputs returns the pattern sets the stage reads.
func (s *Stage) Inputs() []patterns.Set { return s.inputs }

// Run executes the stage. Only CompileErrors can be tolerated; every other
// failure stops the stage and is returned.
func (s *Stage) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("stage", s.name)

	for _, p := range s.required {
		if _, err := os.Stat(filepath.FromSlash(p)); err != nil {
			return fmt.Errorf("stage %s: %w: %s", s.name, ErrMissingSource, p)
		}
	}

	matches, err := s.selectInputs()
	if err != nil {
		return fmt.Errorf("stage %s: %w", s.name, err)
	}
	logger.Info("Stage started.", "files", len(matches), "steps", s.Steps(), "dest", s.dest)

	written, failed := 0, 0
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := ReadFile(m)
		if err != nil {
			return fmt.Errorf("stage %s: %w", s.name, err)
		}

		out, err := s.apply(ctx, f)
		if err != nil {
			var compileErr *CompileError
			if s.tolerant && errors.As(err, &compileErr) {
				logger.Error("Compile failed, continuing with remaining files.", "file", m.Path, "error", compileErr)
				failed++
				continue
			}
			return fmt.Errorf("stage %s: %s: %w", s.name, m.Path, err)
		}

		for _, o := range out {
			target, err := o.WriteTo(s.dest)
			if err != nil {
				return fmt.Errorf("stage %s: %w", s.name, err)
			}
			logger.Debug("File written.", "source", m.Path, "target", target)
			written++
		}
	}

	logger.Info("Stage finished.", "written", written, "failed", failed)
	return nil
}

// selectInputs merges the matches of every input set, dropping duplicates.
func (s *Stage) selectInputs() ([]patterns.Match, error) {
	seen := make(map[string]struct{})
	var all []patterns.Match
	for _, set := range s.inputs {
		matches, err := set.Select()
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, dup := seen[m.Path]; dup {
				continue
			}
			seen[m.Path] = struct{}{}
			all = append(all, m)
		}
	}
	return all, nil
}

// apply runs the steps over one source file and everything it fans out to.
func (s *Stage) apply(ctx context.Context, f *File) ([]*File, error) {
	batch := []*File{f}
	for _, step := range s.steps {
		var next []*File
		for _, in := range batch {
			out, err := step.Apply(ctx, in)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", step.Name(), err)
			}
			next = append(next, out...)
		}
		batch = next
	}
	return batch, nil
}
