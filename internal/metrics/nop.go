// Package metrics provides metrics collector implementations for the
// secchub-planning library.
package metrics

import "github.com/ElCzar/secchub-planning/types"

// NopMetrics implements types.MetricsCollector with no-op methods.
//
// This is the default implementation used when no collector is provided,
// eliminating nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordMessageState is a no-op implementation.
func (*NopMetrics) RecordMessageState(_ types.MessageState) {}

// RecordResolution is a no-op implementation.
func (*NopMetrics) RecordResolution(_ string, _ bool) {}

// RecordSectionCreated is a no-op implementation.
func (*NopMetrics) RecordSectionCreated(_ bool) {}

// RecordAssignment is a no-op implementation.
func (*NopMetrics) RecordAssignment(_ bool) {}

// RecordDeduplicated is a no-op implementation.
func (*NopMetrics) RecordDeduplicated(_ string) {}

// RecordRetryScheduled is a no-op implementation.
func (*NopMetrics) RecordRetryScheduled(_ int) {}

// RecordPollTick is a no-op implementation.
func (*NopMetrics) RecordPollTick(_ bool, _ float64) {}

// RecordStatusChanged is a no-op implementation.
func (*NopMetrics) RecordStatusChanged(_ int) {}

// RecordPublished is a no-op implementation.
func (*NopMetrics) RecordPublished() {}

// RecordCleared is a no-op implementation.
func (*NopMetrics) RecordCleared() {}

// RecordBuffered is a no-op implementation.
func (*NopMetrics) RecordBuffered(_ int) {}
