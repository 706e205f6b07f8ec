package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"redwatch/internal/engine"
	"redwatch/internal/model"
)

type countingScanner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingScanner) Scan(_ context.Context) (*model.ScanResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &model.ScanResult{}, nil
}

func (c *countingScanner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	scanner := &countingScanner{}
	s := New(scanner, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if got := scanner.count(); got < 2 {
		t.Errorf("expected at least 2 scans (immediate + tick), got %d", got)
	}
}

func TestSchedulerToleratesScanErrors(t *testing.T) {
	scanner := &countingScanner{err: errors.New("persistence down")}
	s := New(scanner, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if got := scanner.count(); got < 2 {
		t.Errorf("expected scheduler to keep ticking after errors, got %d scans", got)
	}
}

func TestSchedulerSkipsBusyTicks(t *testing.T) {
	scanner := &countingScanner{err: engine.ErrScanInProgress}
	s := New(scanner, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	// Busy results are skipped quietly; the loop itself must keep running.
	if got := scanner.count(); got < 2 {
		t.Errorf("expected continued ticks while busy, got %d scans", got)
	}
}
