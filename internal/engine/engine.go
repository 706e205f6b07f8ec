// Package engine drives scan cycles: fetch new items per channel, evaluate
// them against the active rules, and persist the resulting matches.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"redwatch/internal/feed"
	"redwatch/internal/match"
	"redwatch/internal/model"
	"redwatch/internal/notify"
	"redwatch/internal/storage"
)

// ErrScanInProgress is returned when a scan is triggered while a previous
// cycle is still running. At most one cycle runs at a time.
var ErrScanInProgress = errors.New("scan already in progress")

// Engine runs scan cycles over the active rule set.
type Engine struct {
	store    storage.Storage
	source   feed.Source
	notifier notify.Sender
	log      *slog.Logger

	timeout time.Duration
	workers int

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetchTimeout sets the per-channel fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithFetchWorkers bounds how many channel fetches run concurrently.
func WithFetchWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithNotifier sets the sender invoked once per newly recorded match.
func WithNotifier(s notify.Sender) Option {
	return func(e *Engine) { e.notifier = s }
}

// New creates an Engine.
func New(store storage.Storage, source feed.Source, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		source:  source,
		log:     log,
		timeout: 30 * time.Second,
		workers: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan runs one cycle: resolve channels from the active rules, fetch their
// newest items, evaluate unseen items, persist any matches, and hand them
// to the notifier.
//
// A failed channel fetch contributes zero items and never aborts the cycle;
// only a persistence failure surfaces as an error. If ctx is cancelled
// mid-cycle, no further fetches start but matches already computed are
// still persisted, so later cycles see an up-to-date dedup set.
func (e *Engine) Scan(ctx context.Context) (*model.ScanResult, error) {
	if !e.mu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer e.mu.Unlock()

	started := time.Now()

	rules, err := e.store.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	if len(rules) == 0 {
		e.log.Debug("no active rules, skipping scan")
		return &model.ScanResult{}, nil
	}

	channels := match.Channels(rules)

	seen, err := e.store.SeenItemIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seen items: %w", err)
	}

	var (
		evalMu  sync.Mutex
		matches []model.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, channel := range channels {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			items := e.fetchChannel(gctx, channel)

			evalMu.Lock()
			defer evalMu.Unlock()
			for _, item := range items {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				// Marked for the rest of this cycle regardless of match
				// outcome, so an item surfacing on two channels is
				// evaluated once. Only matched items persist as seen
				// across cycles.
				seen[item.ID] = struct{}{}
				matches = append(matches, match.Evaluate(item, rules)...)
			}
			return nil
		})
	}
	_ = g.Wait() // fetch errors are contained per channel

	if len(matches) > 0 {
		// Persist even when ctx was cancelled mid-cycle: later cycles rely
		// on the recorded matches to dedup already-evaluated items.
		if err := e.store.AppendMatches(context.WithoutCancel(ctx), matches); err != nil {
			return nil, fmt.Errorf("append matches: %w", err)
		}
	}

	e.log.Info("scan complete",
		"channels", len(channels),
		"new_matches", len(matches),
		"duration", time.Since(started))

	e.notifyAll(ctx, matches)

	return &model.ScanResult{
		NewMatches: len(matches),
		Matches:    matches,
	}, nil
}

// fetchChannel degrades any fetch failure to an empty item list.
func (e *Engine) fetchChannel(ctx context.Context, channel string) []model.Item {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	items, err := e.source.Fetch(fetchCtx, channel)
	if err != nil {
		e.log.Warn("fetch channel", "channel", channel, "error", err)
		return nil
	}
	e.log.Debug("fetched channel", "channel", channel, "items", len(items))
	return items
}

// notifyAll delivers each match best-effort. Matches are already recorded;
// a delivery failure is logged and never rolls them back.
func (e *Engine) notifyAll(ctx context.Context, matches []model.Match) {
	if e.notifier == nil {
		return
	}
	for _, m := range matches {
		if err := e.notifier.Send(ctx, m); err != nil {
			e.log.Error("notify match", "rule_id", m.RuleID, "item_id", m.Item.ID, "error", err)
		}
	}
}
