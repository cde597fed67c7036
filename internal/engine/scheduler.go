package engine

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/scheduler"
)

// Scheduler returns the scheduler instance for API access.
func (e *Engine) Scheduler() *scheduler.Scheduler {
	return e.scheduler
}

// Run starts the engine and all its background jobs.
// It blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	e.scheduler.Start()
	if next, ok := e.appearance.NextCheck(); ok {
		log.Info("Automatic night mode armed", "next_check", next)
	}

	<-ctx.Done()
	return nil
}
