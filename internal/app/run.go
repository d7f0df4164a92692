package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/assetgrid/internal/ctxlog"
)

// Run executes the configured task. It returns when the task finishes, or,
// for watch, when ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}
	defer func() {
		if err := a.closeNotifiers(); err != nil {
			a.logger.Warn("Failed to close notifiers.", "error", err)
		}
	}()

	t, err := a.tasks.Lookup(a.config.Task)
	if err != nil {
		return err
	}

	a.logger.Info("🚀 Running task.", "task", t.Name(), "mode", a.resolved.Mode.String())
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		a.logger.Error("Task failed.", "task", t.Name(), "duration", time.Since(start), "error", err)
		return fmt.Errorf("task %s failed: %w", t.Name(), err)
	}
	a.logger.Info("🏁 Task finished.", "task", t.Name(), "duration", time.Since(start))
	return nil
}
