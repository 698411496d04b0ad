package reporting_test

import (
	"time"

	"github.com/shopspring/decimal"

	reporting "contract-ledger/internal/reporting/domain"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func printerPeriod(id string, start, end time.Time) reporting.Period {
	return reporting.Period{
		ID:           reporting.PeriodID(id),
		DeviceName:   "Printer",
		SerialNumber: "SN-1",
		Location:     "HQ",
		DivisionID:   7,
		DivisionName: "Finance",
		StartDate:    start,
		EndDate:      end,
	}
}

func monthlyEntries(id string, year int, from, to time.Month, charge int64) []reporting.ChargeEntry {
	entries := make([]reporting.ChargeEntry, 0, int(to-from)+1)
	for m := from; m <= to; m++ {
		entries = append(entries, reporting.ChargeEntry{
			PeriodID:      reporting.PeriodID(id),
			ChargeDate:    day(year, m, 15),
			MonthlyCharge: amount(charge),
		})
	}
	return entries
}

// printerScenario is one printer reissued for 2024: A covers 2023 at 100, B covers 2024 at 150.
func printerScenario() ([]reporting.Period, reporting.LedgerSnapshot) {
	periods := []reporting.Period{
		printerPeriod("A", day(2023, time.January, 1), day(2023, time.December, 31)),
		printerPeriod("B", day(2024, time.January, 1), day(2024, time.December, 31)),
	}
	ledger := reporting.LedgerSnapshot{
		"A": monthlyEntries("A", 2023, time.January, time.December, 100),
		"B": monthlyEntries("B", 2024, time.January, time.December, 150),
	}
	return periods, ledger
}
