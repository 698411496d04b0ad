package reporting

import "github.com/shopspring/decimal"

// CellKind tags a CellValue.
type CellKind int

const (
	CellUncovered CellKind = iota
	CellCharged
	CellWarranty
)

// String returns the wire name of the kind.
func (k CellKind) String() string {
	switch k {
	case CellCharged:
		return "charged"
	case CellWarranty:
		return "warranty"
	default:
		return "uncovered"
	}
}

// CellValue is the resolved state of one lineage in one month.
type CellValue struct {
	Kind   CellKind
	Amount decimal.Decimal
}

// Charged builds a charged cell.
func Charged(amount decimal.Decimal) CellValue {
	return CellValue{Kind: CellCharged, Amount: amount}
}

// Warranty builds a warranty cell.
func Warranty() CellValue { return CellValue{Kind: CellWarranty} }

// Uncovered builds an uncovered cell.
func Uncovered() CellValue { return CellValue{Kind: CellUncovered} }

// IsCharged reports whether the cell contributes to totals.
func (c CellValue) IsCharged() bool { return c.Kind == CellCharged }

// Equal compares kind and amount.
func (c CellValue) Equal(other CellValue) bool {
	return c.Kind == other.Kind && c.Amount.Equal(other.Amount)
}

// WarrantySet holds the months a lineage is under warranty.
// A nil set means the view does not support warranty.
type WarrantySet map[Month]struct{}

// NewWarrantySet builds a set from months.
func NewWarrantySet(months ...Month) WarrantySet {
	set := make(WarrantySet, len(months))
	for _, m := range months {
		set[m] = struct{}{}
	}
	return set
}

// Has reports membership; safe on a nil set.
func (s WarrantySet) Has(m Month) bool {
	if s == nil {
		return false
	}
	_, ok := s[m]
	return ok
}

// WarrantyIndex maps lineages to their warranty months.
type WarrantyIndex map[LineageKey]WarrantySet

// For returns the set for key, nil when absent.
func (w WarrantyIndex) For(key LineageKey) WarrantySet {
	if w == nil {
		return nil
	}
	return w[key]
}

// ResolveCell decides what the lineage shows for month m. Every member period that
// overlaps the month contributes its ledger entries, and the first entry dated inside
// the month wins. A month with coverage but no entry stays uncovered.
func ResolveCell(l Lineage, m Month, ledger LedgerSnapshot, warranty WarrantySet) CellValue {
	for _, p := range l.Periods {
		if !p.Overlaps(m) {
			continue
		}
		for _, entry := range ledger[p.ID] {
			if !m.Contains(entry.ChargeDate) {
				continue
			}
			if warranty.Has(m) {
				return Warranty()
			}
			return Charged(entry.MonthlyCharge)
		}
	}
	return Uncovered()
}
