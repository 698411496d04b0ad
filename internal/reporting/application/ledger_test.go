package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reporting "contract-ledger/internal/reporting/domain"
)

type countingSource struct {
	calls   atomic.Int32
	fail    map[reporting.PeriodID]bool
	release chan struct{}
}

func (s *countingSource) ChargeEntries(ctx context.Context, id reporting.PeriodID) ([]reporting.ChargeEntry, error) {
	s.calls.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail[id] {
		return nil, errors.New("backend unavailable")
	}
	return []reporting.ChargeEntry{{
		PeriodID:      id,
		ChargeDate:    time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		MonthlyCharge: decimalFromInt(100),
	}}, nil
}

func TestChargeLedger_LoadCachesAndSkipsKnownIDs(t *testing.T) {
	source := &countingSource{}
	ledger, err := NewChargeLedger(source, WithFetchConcurrency(2))
	require.NoError(t, err)

	require.NoError(t, ledger.Load(context.Background(), []reporting.PeriodID{"a", "b", "a", "c"}))
	assert.Equal(t, int32(3), source.calls.Load())

	require.NoError(t, ledger.Load(context.Background(), []reporting.PeriodID{"a", "b"}))
	assert.Equal(t, int32(3), source.calls.Load())

	snapshot := ledger.Snapshot()
	assert.Len(t, snapshot, 3)
	assert.True(t, ledger.Cached("c"))
}

func TestChargeLedger_FailureLeavesPeriodAbsent(t *testing.T) {
	source := &countingSource{fail: map[reporting.PeriodID]bool{"bad": true}}
	ledger, err := NewChargeLedger(source)
	require.NoError(t, err)

	err = ledger.Load(context.Background(), []reporting.PeriodID{"good", "bad"})

	require.NoError(t, err)
	snapshot := ledger.Snapshot()
	assert.Contains(t, snapshot, reporting.PeriodID("good"))
	assert.NotContains(t, snapshot, reporting.PeriodID("bad"))
	assert.Equal(t, []reporting.PeriodID{"bad"}, ledger.Missing([]reporting.PeriodID{"good", "bad"}))
}

func TestChargeLedger_PrefetchReturnsBeforeDataArrives(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	ledger, err := NewChargeLedger(source)
	require.NoError(t, err)

	var mu sync.Mutex
	arrived := make([]reporting.PeriodID, 0, 2)
	done := make(chan struct{}, 2)
	ledger.OnUpdate(func(id reporting.PeriodID) {
		mu.Lock()
		arrived = append(arrived, id)
		mu.Unlock()
		done <- struct{}{}
	})

	ledger.Prefetch(context.Background(), []reporting.PeriodID{"a", "b"})
	assert.Empty(t, ledger.Snapshot())

	close(source.release)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("prefetch did not complete")
		}
	}

	mu.Lock()
	assert.ElementsMatch(t, []reporting.PeriodID{"a", "b"}, arrived)
	mu.Unlock()
	assert.Len(t, ledger.Snapshot(), 2)
}

func TestChargeLedger_OnUpdateNotifiesEverySubscriberOnce(t *testing.T) {
	ledger, err := NewChargeLedger(&countingSource{})
	require.NoError(t, err)

	var first, second, late atomic.Int32
	ledger.OnUpdate(func(reporting.PeriodID) {
		first.Add(1)
		// registered mid fan-out; only sees later periods
		ledger.OnUpdate(func(reporting.PeriodID) { late.Add(1) })
	})
	ledger.OnUpdate(func(reporting.PeriodID) { second.Add(1) })
	ledger.OnUpdate(nil)

	require.NoError(t, ledger.Load(context.Background(), []reporting.PeriodID{"a"}))

	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
	assert.Zero(t, late.Load())
}

func TestChargeLedger_SnapshotIsIsolated(t *testing.T) {
	ledger, err := NewChargeLedger(&countingSource{})
	require.NoError(t, err)
	require.NoError(t, ledger.Load(context.Background(), []reporting.PeriodID{"a"}))

	snapshot := ledger.Snapshot()
	delete(snapshot, "a")

	assert.True(t, ledger.Cached("a"))
}

func TestChargeLedger_LoadHonoursCancelledContext(t *testing.T) {
	source := &countingSource{release: make(chan struct{})}
	ledger, err := NewChargeLedger(source)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = ledger.Load(ctx, []reporting.PeriodID{"a"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ledger.Cached("a"))
}

func TestNewChargeLedger_NilSource(t *testing.T) {
	_, err := NewChargeLedger(nil)
	assert.Error(t, err)
}
