package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodID identifies one contract period.
type PeriodID string

// String returns the raw id.
func (id PeriodID) String() string { return string(id) }

// Period is one contract or reissue record for a physical asset.
type Period struct {
	ID                PeriodID
	DeviceName        string
	SerialNumber      string
	Location          string
	DivisionID        int
	DivisionName      string
	StartDate         time.Time
	EndDate           time.Time
	MonthlyChargeHint decimal.Decimal
	Reissued          bool

	ContractNo string
	VendorName string
	Brand      string
	Model      string
	Type       string
	Price      decimal.Decimal
	StatusID   int
}

// Key returns the lineage key of the period.
func (p Period) Key() LineageKey {
	return LineageKey{DeviceName: p.DeviceName, Location: p.Location, SerialNumber: p.SerialNumber}
}

// Malformed reports whether the period dates are unusable for coverage.
func (p Period) Malformed() bool {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return true
	}
	return p.EndDate.Before(p.StartDate)
}

// Overlaps reports whether the period covers any day of m.
func (p Period) Overlaps(m Month) bool {
	if p.Malformed() {
		return false
	}
	return !DateOf(p.EndDate).Before(m.Start()) && !DateOf(p.StartDate).After(m.End())
}

// DateOf strips the clock from t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ChargeEntry is one billed month for a period.
type ChargeEntry struct {
	PeriodID      PeriodID
	ChargeDate    time.Time
	MonthlyCharge decimal.Decimal
}

// LedgerSnapshot is a read-only view of fetched charge entries keyed by period.
// A missing key means the entries have not arrived (or failed to).
type LedgerSnapshot map[PeriodID][]ChargeEntry
