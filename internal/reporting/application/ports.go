package application

import (
	"context"
	"time"

	reporting "contract-ledger/internal/reporting/domain"
)

// PeriodSource lists contract periods visible to a scope.
type PeriodSource interface {
	ListPeriods(ctx context.Context, scope reporting.Scope) ([]reporting.Period, error)
}

// ChargeSource loads the monthly charge entries of one period.
// Implementations must be safe to call concurrently for distinct ids.
type ChargeSource interface {
	ChargeEntries(ctx context.Context, periodID reporting.PeriodID) ([]reporting.ChargeEntry, error)
}

// WarrantySource returns the warranty months of a lineage.
type WarrantySource interface {
	WarrantyMonths(ctx context.Context, key reporting.LineageKey) (reporting.WarrantySet, error)
}

// Clock provides time for report defaults.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }
