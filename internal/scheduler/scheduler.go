// Package scheduler triggers scan cycles on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"redwatch/internal/engine"
	"redwatch/internal/model"
)

// Scanner triggers one scan cycle.
type Scanner interface {
	Scan(ctx context.Context) (*model.ScanResult, error)
}

// Scheduler periodically runs scan cycles until its context is cancelled.
type Scheduler struct {
	scanner Scanner
	log     *slog.Logger
	tick    time.Duration
}

// New creates a Scheduler that triggers a scan every tick.
func New(scanner Scanner, tick time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		scanner: scanner,
		log:     log,
		tick:    tick,
	}
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
// A scan runs immediately, then once per tick. A tick that fires while a
// cycle is still running is skipped rather than queued.
func (s *Scheduler) Run(ctx context.Context) {
	s.scan(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	result, err := s.scanner.Scan(ctx)
	if errors.Is(err, engine.ErrScanInProgress) {
		s.log.Debug("previous scan still running, skipping tick")
		return
	}
	if err != nil {
		s.log.Error("scheduled scan", "error", err)
		return
	}
	if result.NewMatches > 0 {
		s.log.Info("scheduled scan found matches", "count", result.NewMatches)
	}
}
