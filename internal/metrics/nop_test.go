package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/types"
)

func TestNewNop(t *testing.T) {
	collector := NewNop()

	require.NotNil(t, collector)
	require.IsType(t, &NopMetrics{}, collector)
}

func TestNopMetrics_RecordMessageState(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordMessageState(types.MessageReceived)
		collector.RecordMessageState(types.MessageDropped)
		collector.RecordMessageState(types.MessageState(999))
	})
}

func TestNopMetrics_RecordResolution(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordResolution("exact", true)
		collector.RecordResolution("", false)
		collector.RecordResolution("fuzzy", false)
	})
}

func TestNopMetrics_RecordCounters(t *testing.T) {
	collector := NewNop()

	// Should not panic with various inputs
	require.NotPanics(t, func() {
		collector.RecordSectionCreated(true)
		collector.RecordAssignment(false)
		collector.RecordDeduplicated("cooldown")
		collector.RecordRetryScheduled(-1)
		collector.RecordPollTick(true, 0.003)
		collector.RecordStatusChanged(0)
		collector.RecordPublished()
		collector.RecordCleared()
		collector.RecordBuffered(3)
	})
}

func BenchmarkNopMetrics_RecordMessageState(b *testing.B) {
	collector := NewNop()
	for b.Loop() {
		collector.RecordMessageState(types.MessageAssigned)
	}
}

func BenchmarkNopMetrics_RecordResolution(b *testing.B) {
	collector := NewNop()
	for b.Loop() {
		collector.RecordResolution("exact", true)
	}
}
