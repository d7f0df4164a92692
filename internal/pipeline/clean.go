package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
	"github.com/specialistvlad/assetgrid/internal/fsutil"
)

// Clean removes a destination directory and everything in it. A missing
// directory is not an error, and directories outside the project root are
// removed as well.
type Clean struct {
	name string
	dir  string
}

// NewClean builds a clean step for dir.
func NewClean(name, dir string) *Clean {
	return &Clean{name: name, dir: dir}
}

// Name returns the step name.
func (c *Clean) Name() string { return c.name }

// Dir returns the directory the step removes.
func (c *Clean) Dir() string { return c.dir }

// Run removes the directory.
func (c *Clean) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("stage", c.name)

	existed, err := fsutil.RemoveTree(c.dir)
	if err != nil {
		return fmt.Errorf("stage %s: %w", c.name, err)
	}
	if !existed {
		logger.Debug("Nothing to clean.", "dir", c.dir)
		return nil
	}
	logger.Info("Directory cleaned.", "dir", c.dir)
	return nil
}
