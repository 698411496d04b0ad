package memory

import (
	"context"
	"sync"

	reporting "contract-ledger/internal/reporting/domain"
)

// Repository is an in-memory period, charge and warranty store for demo/testing.
// It implements every report source port.
type Repository struct {
	mu       sync.RWMutex
	periods  []reporting.Period
	charges  map[reporting.PeriodID][]reporting.ChargeEntry
	warranty map[reporting.LineageKey]reporting.WarrantySet
	failures map[reporting.PeriodID]error
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{
		charges:  make(map[reporting.PeriodID][]reporting.ChargeEntry),
		warranty: make(map[reporting.LineageKey]reporting.WarrantySet),
		failures: make(map[reporting.PeriodID]error),
	}
}

// AddPeriods appends periods in order.
func (r *Repository) AddPeriods(periods ...reporting.Period) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods = append(r.periods, periods...)
}

// AddCharges appends entries to their periods.
func (r *Repository) AddCharges(entries ...reporting.ChargeEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.charges[entry.PeriodID] = append(r.charges[entry.PeriodID], entry)
	}
}

// SetWarranty replaces the warranty months of a lineage.
func (r *Repository) SetWarranty(key reporting.LineageKey, set reporting.WarrantySet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warranty[key] = set
}

// FailCharges makes ChargeEntries return err for id.
func (r *Repository) FailCharges(id reporting.PeriodID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[id] = err
}

// ListPeriods returns the periods visible to scope, in insertion order.
func (r *Repository) ListPeriods(ctx context.Context, scope reporting.Scope) ([]reporting.Period, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]reporting.Period, 0, len(r.periods))
	for _, p := range r.periods {
		if scope.Includes(p.DivisionID) {
			result = append(result, p)
		}
	}
	return result, nil
}

// ChargeEntries returns a copy of the period's entries.
func (r *Repository) ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.failures[periodID]; err != nil {
		return nil, err
	}
	return append([]reporting.ChargeEntry(nil), r.charges[periodID]...), nil
}

// WarrantyMonths returns the lineage's warranty set, nil when none.
func (r *Repository) WarrantyMonths(ctx context.Context, key reporting.LineageKey) (reporting.WarrantySet, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.warranty[key], nil
}
