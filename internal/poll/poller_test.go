package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/grid"
	plantest "github.com/ElCzar/secchub-planning/testing"
	"github.com/ElCzar/secchub-planning/types"
)

func newTestPoller(t *testing.T, store *grid.Store, stub *plantest.StubBackend) *Poller {
	t.Helper()

	return New(store, stub, 10*time.Millisecond, time.Second, plantest.NewTestLogger(t), nopPollerMetrics{})
}

type nopPollerMetrics struct{}

func (nopPollerMetrics) RecordPollTick(bool, float64) {}
func (nopPollerMetrics) RecordStatusChanged(int)      {}

func loadedStore() *grid.Store {
	store := grid.New()
	store.LoadRows([]types.SectionRow{
		{
			BackendID:  42,
			CourseName: "Redes",
			Section:    "SIS-01",
			State:      types.RowExisting,
			Teachers: []types.TeacherRef{
				{ID: 7, Name: "Ana", Status: types.StatusPending},
				{ID: 9, Name: "Luis", Status: types.StatusPending},
			},
		},
	})

	return store
}

func TestPollerMergesStatuses(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()
	stub.SetStatuses([]types.SectionStatus{
		{
			SectionID:       42,
			TeacherStatuses: []types.TeacherStatus{{TeacherID: 7, Status: types.StatusConfirmed}},
			HasAssignment:   true,
		},
	})

	p := newTestPoller(t, store, stub)
	require.NoError(t, p.Start(context.Background()))
	defer func() { _ = p.Stop() }()

	require.Eventually(t, func() bool {
		row, _ := store.Row(0)
		return row.Teachers[0].Status == types.StatusConfirmed
	}, time.Second, 5*time.Millisecond)

	// Teacher 9 was absent from the batch and must be untouched.
	row, _ := store.Row(0)
	require.Equal(t, types.StatusPending, row.Teachers[1].Status)
}

func TestPollerSkipsTickWithoutBackendIDs(t *testing.T) {
	store := grid.New()
	store.LoadRows([]types.SectionRow{
		{CourseName: "Redes", Section: "SIS-01", State: types.RowNew},
	})
	stub := plantest.NewStubBackend()

	p := newTestPoller(t, store, stub)
	require.NoError(t, p.Start(context.Background()))
	defer func() { _ = p.Stop() }()

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, stub.FetchCalls(), "no backend ids in the grid, no network calls expected")
}

func TestPollerContinuesAfterFetchError(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()
	stub.FetchErr = errors.New("boom")

	p := newTestPoller(t, store, stub)
	require.NoError(t, p.Start(context.Background()))
	defer func() { _ = p.Stop() }()

	require.Eventually(t, func() bool {
		return stub.FetchCalls() >= 2
	}, time.Second, 5*time.Millisecond)

	// Statuses untouched by the failing ticks.
	row, _ := store.Row(0)
	require.Equal(t, types.StatusPending, row.Teachers[0].Status)
}

func TestPollerForceRefresh(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()

	p := New(store, stub, time.Hour, time.Second, plantest.NewTestLogger(t), nopPollerMetrics{})
	require.NoError(t, p.Start(context.Background()))
	defer func() { _ = p.Stop() }()

	// With an hour-long interval only the immediate first tick ran.
	require.Eventually(t, func() bool { return stub.FetchCalls() == 1 }, time.Second, 5*time.Millisecond)

	p.ForceRefresh()
	require.Eventually(t, func() bool { return stub.FetchCalls() == 2 }, time.Second, 5*time.Millisecond)
}

func TestPollerLifecycle(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()

	p := newTestPoller(t, store, stub)
	require.ErrorIs(t, p.Stop(), ErrNotStarted)

	require.NoError(t, p.Start(context.Background()))
	require.True(t, p.IsStarted())
	require.ErrorIs(t, p.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, p.Stop())
	require.False(t, p.IsStarted())
}

func TestPollerRestarts(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()

	p := newTestPoller(t, store, stub)
	require.NoError(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return stub.FetchCalls() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())

	// A second run must poll again, not trip over the first run's channels.
	calls := stub.FetchCalls()
	require.NoError(t, p.Start(context.Background()))
	require.Eventually(t, func() bool { return stub.FetchCalls() > calls }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())
}

func TestPollerStopsWithContext(t *testing.T) {
	store := loadedStore()
	stub := plantest.NewStubBackend()

	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPoller(t, store, stub)
	require.NoError(t, p.Start(ctx))

	cancel()

	time.Sleep(30 * time.Millisecond)
	calls := stub.FetchCalls()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, stub.FetchCalls(), "cancelled poller must stop issuing ticks")
}
