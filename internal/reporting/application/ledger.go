package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"contract-ledger/internal/observability/logging"
	"contract-ledger/internal/observability/metrics"
	reporting "contract-ledger/internal/reporting/domain"
)

// ChargeLedger caches charge entries per period. Entries are fetched on first use and
// never replaced, so any snapshot taken is a consistent read for BuildMatrix.
type ChargeLedger struct {
	source      ChargeSource
	logger      *logging.Logger
	concurrency int

	mu      sync.RWMutex
	entries map[reporting.PeriodID][]reporting.ChargeEntry

	subMu       sync.Mutex
	subscribers []func(reporting.PeriodID)
}

// LedgerOption configures a ChargeLedger.
type LedgerOption func(*ChargeLedger)

// WithFetchConcurrency bounds the parallel fetches issued by Load.
func WithFetchConcurrency(n int) LedgerOption {
	return func(l *ChargeLedger) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLedgerLogger sets the logger used for fetch failures.
func WithLedgerLogger(logger *logging.Logger) LedgerOption {
	return func(l *ChargeLedger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewChargeLedger constructs a ledger over source.
func NewChargeLedger(source ChargeSource, opts ...LedgerOption) (*ChargeLedger, error) {
	if source == nil {
		return nil, fmt.Errorf("charge ledger: nil source")
	}
	l := &ChargeLedger{
		source:      source,
		logger:      logging.Nop(),
		concurrency: 8,
		entries:     make(map[reporting.PeriodID][]reporting.ChargeEntry),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("charge_ledger")
	return l, nil
}

// OnUpdate registers fn to run after each period's entries land in the cache.
func (l *ChargeLedger) OnUpdate(fn func(reporting.PeriodID)) {
	if fn == nil {
		return
	}
	l.subMu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.subMu.Unlock()
}

// Cached reports whether entries for id are present.
func (l *ChargeLedger) Cached(id reporting.PeriodID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[id]
	return ok
}

// Snapshot copies the current cache.
func (l *ChargeLedger) Snapshot() reporting.LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snapshot := make(reporting.LedgerSnapshot, len(l.entries))
	for id, entries := range l.entries {
		snapshot[id] = entries
	}
	return snapshot
}

// Missing returns the ids without cached entries, deduplicated, in input order.
func (l *ChargeLedger) Missing(ids []reporting.PeriodID) []reporting.PeriodID {
	seen := make(map[reporting.PeriodID]struct{}, len(ids))
	missing := make([]reporting.PeriodID, 0, len(ids))
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := l.entries[id]; ok {
			continue
		}
		missing = append(missing, id)
	}
	return missing
}

// Prefetch starts one background fetch per uncached id and returns at once.
// A period requested again before its first fetch lands may be fetched twice.
func (l *ChargeLedger) Prefetch(ctx context.Context, ids []reporting.PeriodID) {
	for _, id := range l.Missing(ids) {
		go l.fetch(context.WithoutCancel(ctx), id)
	}
}

// Load fetches every uncached id and waits for all of them. Per-period failures are
// logged and leave that period absent; Load only fails when ctx is done.
func (l *ChargeLedger) Load(ctx context.Context, ids []reporting.PeriodID) error {
	missing := l.Missing(ids)
	if len(missing) == 0 {
		return nil
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)
	for _, id := range missing {
		id := id
		group.Go(func() error {
			l.fetch(groupCtx, id)
			return nil
		})
	}
	_ = group.Wait()
	return ctx.Err()
}

func (l *ChargeLedger) fetch(ctx context.Context, id reporting.PeriodID) {
	start := time.Now()
	entries, err := l.source.ChargeEntries(ctx, id)
	if err != nil {
		metrics.ObserveLedgerFetch(metrics.ResultError, time.Since(start))
		l.logger.Warnw("charge entries unavailable",
			"periodID", id,
			"error", fmt.Errorf("%w: %v", reporting.ErrMissingData, err),
		)
		return
	}
	metrics.ObserveLedgerFetch(metrics.ResultSuccess, time.Since(start))
	if entries == nil {
		entries = []reporting.ChargeEntry{}
	}

	l.mu.Lock()
	if _, ok := l.entries[id]; !ok {
		l.entries[id] = entries
	}
	size := len(l.entries)
	l.mu.Unlock()
	metrics.SetLedgerCacheSize(size)

	l.subMu.Lock()
	subscribers := make([]func(reporting.PeriodID), len(l.subscribers))
	copy(subscribers, l.subscribers)
	l.subMu.Unlock()
	for _, fn := range subscribers {
		fn(id)
	}
}
