package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	EngineMetrics
	PollerMetrics
	ChannelMetrics
}

// EngineMetrics defines metrics for reconciliation engine operations.
type EngineMetrics interface {
	// RecordMessageState records a selection message state transition.
	RecordMessageState(state MessageState)

	// RecordResolution records a resolution attempt.
	//
	// Parameters:
	//   - strategy: Name of the strategy that matched ("" if none matched)
	//   - resolved: true if a row was found
	RecordResolution(strategy string, resolved bool)

	// RecordSectionCreated records an on-demand section creation attempt.
	RecordSectionCreated(success bool)

	// RecordAssignment records an assign call outcome.
	RecordAssignment(success bool)

	// RecordDeduplicated records a skipped assignment, either because the
	// teacher was already on the row or the cooldown window was active.
	//
	// Parameters:
	//   - reason: "duplicate" or "cooldown"
	RecordDeduplicated(reason string)

	// RecordRetryScheduled records a resolution retry being scheduled.
	RecordRetryScheduled(attempt int)
}

// PollerMetrics defines metrics for status poller operations.
type PollerMetrics interface {
	// RecordPollTick records one poll cycle.
	//
	// Parameters:
	//   - success: false when the fetch failed and the merge was skipped
	//   - duration: Tick duration in seconds
	RecordPollTick(success bool, duration float64)

	// RecordStatusChanged records how many teacher statuses a tick updated.
	RecordStatusChanged(count int)
}

// ChannelMetrics defines metrics for the selection channel.
type ChannelMetrics interface {
	// RecordPublished records a selection message being published.
	RecordPublished()

	// RecordCleared records a selection message being cleared.
	RecordCleared()

	// RecordBuffered sets the number of messages buffered while the grid
	// had not finished loading (gauge metric).
	RecordBuffered(count int)
}
