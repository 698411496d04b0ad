package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporting "contract-ledger/internal/reporting/domain"
)

func TestBuildLineages_MergesReissues(t *testing.T) {
	periods, _ := printerScenario()

	lineages := reporting.BuildLineages(periods)

	require.Len(t, lineages, 1)
	l := lineages[0]
	assert.Equal(t, reporting.LineageKey{DeviceName: "Printer", Location: "HQ", SerialNumber: "SN-1"}, l.Key)
	assert.Equal(t, []reporting.PeriodID{"A", "B"}, l.PeriodIDs())
	assert.Equal(t, day(2024, time.December, 31), l.EffectiveEnd)
	assert.Equal(t, day(2024, time.January, 1), l.EffectiveStart)
	assert.Equal(t, reporting.PeriodID("B"), l.RepresentativeID)
	assert.Equal(t, "Finance", l.DivisionName)
}

func TestBuildLineages_LatestStartWinsEvenWhenEarlierPeriodsExist(t *testing.T) {
	periods := []reporting.Period{
		printerPeriod("late", day(2024, time.June, 1), day(2024, time.December, 31)),
		printerPeriod("early", day(2022, time.January, 1), day(2025, time.March, 31)),
	}

	lineages := reporting.BuildLineages(periods)

	require.Len(t, lineages, 1)
	assert.Equal(t, day(2024, time.June, 1), lineages[0].EffectiveStart)
	assert.Equal(t, day(2025, time.March, 31), lineages[0].EffectiveEnd)
	// only the end boundary moved on "early", and it moved last
	assert.Equal(t, reporting.PeriodID("early"), lineages[0].RepresentativeID)
}

func TestBuildLineages_RepresentativeIsLastBoundaryWriter(t *testing.T) {
	periods := []reporting.Period{
		printerPeriod("p1", day(2023, time.January, 1), day(2023, time.December, 31)),
		printerPeriod("p2", day(2023, time.June, 1), day(2023, time.September, 30)),
		printerPeriod("p3", day(2022, time.January, 1), day(2023, time.October, 31)),
	}

	lineages := reporting.BuildLineages(periods)

	require.Len(t, lineages, 1)
	assert.Equal(t, day(2023, time.June, 1), lineages[0].EffectiveStart)
	assert.Equal(t, day(2023, time.December, 31), lineages[0].EffectiveEnd)
	assert.Equal(t, reporting.PeriodID("p2"), lineages[0].RepresentativeID)
}

func TestBuildLineages_KeyIsExactAndOrderIsFirstAppearance(t *testing.T) {
	a := printerPeriod("a", day(2023, time.January, 1), day(2023, time.December, 31))
	b := a
	b.ID = "b"
	b.DeviceName = "printer"
	c := a
	c.ID = "c"
	c.Location = "Branch"
	d := a
	d.ID = "d"

	lineages := reporting.BuildLineages([]reporting.Period{b, a, c, d})

	require.Len(t, lineages, 3)
	assert.Equal(t, "printer", lineages[0].Key.DeviceName)
	assert.Equal(t, []reporting.PeriodID{"a", "d"}, lineages[1].PeriodIDs())
	assert.Equal(t, "Branch", lineages[2].Key.Location)
}

func TestBuildLineages_EmptyKeyFieldsStillGroup(t *testing.T) {
	periods := []reporting.Period{
		{ID: "x", StartDate: day(2023, time.January, 1), EndDate: day(2023, time.March, 31)},
		{ID: "y", StartDate: day(2023, time.April, 1), EndDate: day(2023, time.June, 30)},
	}

	lineages := reporting.BuildLineages(periods)

	require.Len(t, lineages, 1)
	assert.Equal(t, reporting.LineageKey{}, lineages[0].Key)
	assert.Len(t, lineages[0].Periods, 2)
}

func TestBuildLineages_SinglePeriodIsItsOwnLineage(t *testing.T) {
	p := printerPeriod("only", day(2023, time.March, 10), day(2023, time.March, 31))

	lineages := reporting.BuildLineages([]reporting.Period{p})

	require.Len(t, lineages, 1)
	assert.Equal(t, p.StartDate, lineages[0].EffectiveStart)
	assert.Equal(t, p.EndDate, lineages[0].EffectiveEnd)
	assert.Equal(t, p.ID, lineages[0].RepresentativeID)
}

func TestBuildLineages_MalformedPeriodNeverWinsBoundary(t *testing.T) {
	broken := printerPeriod("broken", time.Time{}, time.Time{})
	good := printerPeriod("good", day(2023, time.January, 1), day(2023, time.December, 31))
	inverted := printerPeriod("inverted", day(2025, time.January, 1), day(2024, time.January, 1))

	lineages := reporting.BuildLineages([]reporting.Period{broken, good, inverted})

	require.Len(t, lineages, 1)
	assert.Len(t, lineages[0].Periods, 3)
	assert.Equal(t, good.StartDate, lineages[0].EffectiveStart)
	assert.Equal(t, good.EndDate, lineages[0].EffectiveEnd)
	assert.Equal(t, reporting.PeriodID("good"), lineages[0].RepresentativeID)
}

func TestBuildLineages_WithinYearsSkipsOutsidePeriods(t *testing.T) {
	periods, _ := printerScenario()
	other := printerPeriod("other", day(2020, time.January, 1), day(2021, time.December, 31))
	other.SerialNumber = "SN-2"
	periods = append(periods, other)

	lineages := reporting.BuildLineages(periods, reporting.WithinYears(reporting.YearSpan{From: 2024, To: 2024}))

	require.Len(t, lineages, 1)
	assert.Equal(t, []reporting.PeriodID{"B"}, lineages[0].PeriodIDs())
}

func TestSortLineages_ByDivisionThenDevice(t *testing.T) {
	lineages := []reporting.Lineage{
		{Key: reporting.LineageKey{DeviceName: "Scanner"}, DivisionName: "IT"},
		{Key: reporting.LineageKey{DeviceName: "Printer"}, DivisionName: "IT"},
		{Key: reporting.LineageKey{DeviceName: "Copier"}, DivisionName: "Finance"},
	}

	reporting.SortLineages(lineages)

	assert.Equal(t, "Copier", lineages[0].DeviceName())
	assert.Equal(t, "Printer", lineages[1].DeviceName())
	assert.Equal(t, "Scanner", lineages[2].DeviceName())
}
