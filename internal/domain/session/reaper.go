package session

import (
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reaper closes renderer processes in the background. Close asks the
// renderer to exit and terminates it after the launcher's grace period, so
// the frame goroutine never waits on a shutdown.
type Reaper struct {
	group   errgroup.Group
	pending atomic.Int64
	logger  *zap.Logger
}

// NewReaper creates a reaper
func NewReaper(logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reaper{logger: logger}
}

// Reap schedules p for shutdown
func (r *Reaper) Reap(p types.Process) {
	if p == nil {
		return
	}
	r.pending.Add(1)
	r.group.Go(func() error {
		defer r.pending.Add(-1)
		if err := p.Close(); err != nil {
			r.logger.Warn("renderer shutdown failed",
				zap.String("backend", p.Backend()),
				zap.Error(err))
			return err
		}
		r.logger.Debug("renderer shut down", zap.String("backend", p.Backend()))
		return nil
	})
}

// Pending returns the number of shutdowns still in progress
func (r *Reaper) Pending() int {
	return int(r.pending.Load())
}

// Wait blocks until every scheduled shutdown finished and returns the
// first failure
func (r *Reaper) Wait() error {
	return r.group.Wait()
}
