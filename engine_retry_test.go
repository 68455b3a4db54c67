package planning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/selection"
	"github.com/ElCzar/secchub-planning/types"
)

func TestEngine_ResolutionRetrySucceedsWhenRowAppears(t *testing.T) {
	te := newTestEngine(t)
	te.start(t)

	te.svc.SetListRows(nil)
	require.NoError(t, te.engine.Hydrate(context.Background()))

	// The selection addresses a row that has not been typed into the grid
	// yet. Resolution fails and the message enters the retry cycle.
	target := persistedRow(10, "Redes", "SIS-01")
	_, err := te.bus.Publish(grid.IdentityKey(target),
		[]types.TeacherRef{{ID: 7}}, selection.PublishOptions{})
	require.NoError(t, err)

	// Let at least one retry fire before the row shows up.
	require.Eventually(t, func() bool {
		pending := te.bus.Snapshot().Pending()
		return len(pending) == 1 && pending[0].RetryCount >= 1
	}, waitFor, tick)
	require.Empty(t, te.svc.AssignCalls())

	te.store.AppendRow(target)

	require.Eventually(t, func() bool {
		return len(te.svc.AssignCalls()) == 1
	}, waitFor, tick)
	require.Equal(t, int64(10), te.svc.AssignCalls()[0].SectionID)
	require.Empty(t, te.hooks.droppedReasons())
}

func TestEngine_RetryBudgetExhaustedDropsMessage(t *testing.T) {
	te := newTestEngine(t)
	te.start(t)

	te.svc.SetListRows(nil)
	require.NoError(t, te.engine.Hydrate(context.Background()))

	ghost := persistedRow(99, "Fantasma", "SIS-09")
	_, err := te.bus.Publish(grid.IdentityKey(ghost),
		[]types.TeacherRef{{ID: 7}}, selection.PublishOptions{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		reasons := te.hooks.droppedReasons()
		return len(reasons) == 1 && reasons[0] == DropReasonUnresolved
	}, waitFor, tick)

	require.Empty(t, te.bus.Snapshot().Pending())
	require.Empty(t, te.svc.AssignCalls())

	// The dropped message must never come back.
	time.Sleep(100 * time.Millisecond)
	require.Empty(t, te.bus.Snapshot().Pending())
	require.Len(t, te.hooks.droppedReasons(), 1)
}

func TestEngine_RetryDoesNotBlockOtherMessages(t *testing.T) {
	te := newTestEngine(t)
	te.start(t)

	good := persistedRow(10, "Redes", "SIS-01")
	te.svc.SetListRows([]types.SectionRow{good})
	require.NoError(t, te.engine.Hydrate(context.Background()))

	ghost := persistedRow(99, "Fantasma", "SIS-09")
	_, err := te.bus.Publish(grid.IdentityKey(ghost),
		[]types.TeacherRef{{ID: 1}}, selection.PublishOptions{})
	require.NoError(t, err)

	_, err = te.bus.Publish(grid.IdentityKey(good),
		[]types.TeacherRef{{ID: 2}}, selection.PublishOptions{})
	require.NoError(t, err)

	// The resolvable message lands while the ghost is still retrying.
	require.Eventually(t, func() bool {
		return len(te.svc.AssignCalls()) == 1
	}, waitFor, tick)
	require.Equal(t, int64(2), te.svc.AssignCalls()[0].TeacherID)
}

func TestEngine_StopCancelsPendingRetries(t *testing.T) {
	te := newTestEngine(t)
	require.NoError(t, te.engine.Start(context.Background()))

	te.svc.SetListRows(nil)
	require.NoError(t, te.engine.Hydrate(context.Background()))

	ghost := persistedRow(99, "Fantasma", "SIS-09")
	_, err := te.bus.Publish(grid.IdentityKey(ghost),
		[]types.TeacherRef{{ID: 7}}, selection.PublishOptions{})
	require.NoError(t, err)

	// Wait until the message is in the retry cycle, then stop the engine.
	require.Eventually(t, func() bool {
		return te.engine.retryScheduled(grid.IdentityKey(ghost)) || len(te.bus.Snapshot().Pending()) == 0
	}, waitFor, tick)

	require.NoError(t, te.engine.Stop())

	// No republish fires after shutdown.
	before := te.bus.Snapshot().Pending()
	time.Sleep(50 * time.Millisecond)
	after := te.bus.Snapshot().Pending()
	require.Equal(t, len(before), len(after))
	for i := range before {
		require.Equal(t, before[i].RetryCount, after[i].RetryCount)
	}
}

func TestEngine_RetryCountIncrementsPerAttempt(t *testing.T) {
	te := newTestEngine(t)
	te.start(t)

	te.svc.SetListRows(nil)
	require.NoError(t, te.engine.Hydrate(context.Background()))

	ghost := persistedRow(99, "Fantasma", "SIS-09")
	_, err := te.bus.Publish(grid.IdentityKey(ghost),
		[]types.TeacherRef{{ID: 7}}, selection.PublishOptions{})
	require.NoError(t, err)

	seen := make(map[int]bool)
	require.Eventually(t, func() bool {
		pending := te.bus.Snapshot().Pending()
		if len(pending) == 1 {
			seen[pending[0].RetryCount] = true
		}
		return len(te.hooks.droppedReasons()) == 1
	}, waitFor, time.Millisecond)

	// Counts climb monotonically toward the budget. Each count below the
	// budget is visible for a full retry delay; the final count is dropped
	// as soon as it is republished, so it may not be sampled.
	require.True(t, seen[TestConfig().MaxResolveAttempts-1])
}
