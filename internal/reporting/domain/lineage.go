package reporting

import (
	"fmt"
	"sort"
	"time"
)

// LineageKey groups the periods of one physical asset. Matching is exact and case sensitive.
type LineageKey struct {
	DeviceName   string
	Location     string
	SerialNumber string
}

// String joins the key parts the way the UI does.
func (k LineageKey) String() string {
	return fmt.Sprintf("%s_%s_%s", k.DeviceName, k.Location, k.SerialNumber)
}

// Lineage is one asset across its reissue history.
type Lineage struct {
	Key              LineageKey
	Periods          []Period
	EffectiveStart   time.Time
	EffectiveEnd     time.Time
	RepresentativeID PeriodID

	DivisionID   int
	DivisionName string
}

// PeriodIDs lists the member period ids in lineage order.
func (l Lineage) PeriodIDs() []PeriodID {
	ids := make([]PeriodID, 0, len(l.Periods))
	for _, p := range l.Periods {
		ids = append(ids, p.ID)
	}
	return ids
}

// DeviceName returns the shared device name.
func (l Lineage) DeviceName() string { return l.Key.DeviceName }

type groupOptions struct {
	window *YearSpan
}

// GroupOption tunes BuildLineages.
type GroupOption func(*groupOptions)

// WithinYears drops periods that start after span.To or end before span.From.
// Malformed periods are kept so they still surface as uncovered rows.
func WithinYears(span YearSpan) GroupOption {
	return func(o *groupOptions) {
		s := span
		o.window = &s
	}
}

// BuildLineages merges periods sharing a LineageKey. Lineages come back in order of
// first appearance. The latest start date and the latest end date win the effective
// boundaries, and whichever period last moved a boundary becomes the representative.
func BuildLineages(periods []Period, opts ...GroupOption) []Lineage {
	var options groupOptions
	for _, opt := range opts {
		opt(&options)
	}

	index := make(map[LineageKey]int)
	lineages := make([]Lineage, 0)
	for _, p := range periods {
		if options.window != nil && !p.Malformed() {
			if p.StartDate.Year() > options.window.To || p.EndDate.Year() < options.window.From {
				continue
			}
		}

		key := p.Key()
		pos, ok := index[key]
		if !ok {
			index[key] = len(lineages)
			lineages = append(lineages, newLineage(p))
			continue
		}
		lineages[pos].absorb(p)
	}
	return lineages
}

func newLineage(p Period) Lineage {
	l := Lineage{
		Key:              p.Key(),
		Periods:          []Period{p},
		RepresentativeID: p.ID,
		DivisionID:       p.DivisionID,
		DivisionName:     p.DivisionName,
	}
	if !p.Malformed() {
		l.EffectiveStart = p.StartDate
		l.EffectiveEnd = p.EndDate
	}
	return l
}

func (l *Lineage) absorb(p Period) {
	l.Periods = append(l.Periods, p)
	if p.Malformed() {
		return
	}
	if l.EffectiveStart.IsZero() || p.StartDate.After(l.EffectiveStart) {
		l.EffectiveStart = p.StartDate
		l.RepresentativeID = p.ID
	}
	if l.EffectiveEnd.IsZero() || p.EndDate.After(l.EffectiveEnd) {
		l.EffectiveEnd = p.EndDate
		l.RepresentativeID = p.ID
	}
}

// SortLineages orders lineages by division name then device name, keeping ties stable.
func SortLineages(lineages []Lineage) {
	sort.SliceStable(lineages, func(i, j int) bool {
		if lineages[i].DivisionName != lineages[j].DivisionName {
			return lineages[i].DivisionName < lineages[j].DivisionName
		}
		return lineages[i].Key.DeviceName < lineages[j].Key.DeviceName
	})
}
