package reporting

import (
	"fmt"
	"time"
)

// MonthsPerYear is the column count of one reporting year.
const MonthsPerYear = 12

// Month identifies one calendar month. Index is zero based (0 = January).
type Month struct {
	Year  int
	Index int
}

// NewMonth builds a Month, carrying overflowing indexes into adjacent years.
func NewMonth(year, index int) Month {
	t := time.Date(year, time.Month(index+1), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Index: int(t.Month()) - 1}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Index: int(t.Month()) - 1}
}

// Start returns the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, time.Month(m.Index+1), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, -1)
}

// Contains reports whether t falls in the same year and month. Day and time are ignored.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && int(t.Month())-1 == m.Index
}

// Label renders the short header form, e.g. "Jan 2024".
func (m Month) Label() string {
	return m.Start().Format("Jan 2006")
}

// String returns YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Index+1)
}

// MonthsBetween lists every month from January of fromYear through December of toYear.
// The result is empty when fromYear > toYear.
func MonthsBetween(fromYear, toYear int) []Month {
	if fromYear > toYear {
		return []Month{}
	}
	months := make([]Month, 0, (toYear-fromYear+1)*MonthsPerYear)
	for year := fromYear; year <= toYear; year++ {
		for index := 0; index < MonthsPerYear; index++ {
			months = append(months, Month{Year: year, Index: index})
		}
	}
	return months
}

// YearSpan is an inclusive range of calendar years.
type YearSpan struct {
	From int
	To   int
}

// Months expands the span into its month columns.
func (s YearSpan) Months() []Month { return MonthsBetween(s.From, s.To) }

// SingleYear reports whether the span covers exactly one year.
func (s YearSpan) SingleYear() bool { return s.From == s.To }

// Validate rejects inverted spans.
func (s YearSpan) Validate() error {
	if s.From > s.To {
		return fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, s.From, s.To)
	}
	return nil
}

// DeriveYearSpan returns the years touched by the periods, widened to include now's year.
// Malformed periods are ignored.
func DeriveYearSpan(periods []Period, now time.Time) YearSpan {
	span := YearSpan{From: now.Year(), To: now.Year()}
	for _, p := range periods {
		if p.Malformed() {
			continue
		}
		if y := p.StartDate.Year(); y < span.From {
			span.From = y
		}
		if y := p.EndDate.Year(); y > span.To {
			span.To = y
		}
	}
	return span
}
