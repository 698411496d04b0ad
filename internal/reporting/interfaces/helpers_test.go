package interfaces

import (
	"time"

	"github.com/shopspring/decimal"

	reporting "contract-ledger/internal/reporting/domain"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var printerKey = reporting.LineageKey{DeviceName: "Printer", Location: "HQ", SerialNumber: "SN-1"}

// singleChargeMatrix is one printer in 2024 charged 500 in March. January is billed but
// on warranty, so it stays out of the totals.
func singleChargeMatrix() reporting.ReportMatrix {
	periods := []reporting.Period{{
		ID:           "42",
		DeviceName:   "Printer",
		SerialNumber: "SN-1",
		Location:     "HQ",
		DivisionID:   7,
		DivisionName: "Finance",
		StartDate:    day(2024, time.January, 1),
		EndDate:      day(2024, time.December, 31),
	}}
	ledger := reporting.LedgerSnapshot{
		"42": {
			{PeriodID: "42", ChargeDate: day(2024, time.January, 15), MonthlyCharge: decimal.NewFromInt(120)},
			{PeriodID: "42", ChargeDate: day(2024, time.March, 15), MonthlyCharge: decimal.NewFromInt(500)},
		},
	}
	warranty := reporting.WarrantyIndex{printerKey: reporting.NewWarrantySet(reporting.NewMonth(2024, 0))}
	lineages := reporting.BuildLineages(periods)
	return reporting.BuildMatrix(lineages, reporting.MonthsBetween(2024, 2024), ledger, warranty)
}
