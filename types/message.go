package types

import "time"

// MessageState tracks a selection message through the reconciliation engine.
//
// States follow a defined progression during normal operation:
//
//	MessageReceived → MessageResolved → (MessageCreated) → MessageAssigned → MessageCleared
//
// When the target row cannot be found yet:
//
//	MessageReceived → MessageRetrying → ... → MessageDropped
type MessageState int

const (
	// MessageReceived is the initial state after the engine picks up a message.
	MessageReceived MessageState = iota

	// MessageResolved means the message was matched to a concrete grid row.
	MessageResolved

	// MessageCreated means the target row was persisted on demand.
	MessageCreated

	// MessageAssigned means the assign call succeeded.
	MessageAssigned

	// MessageCleared means the message was removed from the channel.
	MessageCleared

	// MessageRetrying means resolution failed and the message was re-enqueued.
	MessageRetrying

	// MessageDropped means the message exhausted its retry budget or hit a
	// terminal failure and was discarded.
	MessageDropped
)

// String returns the string representation of the message state.
func (s MessageState) String() string {
	switch s {
	case MessageReceived:
		return "Received"
	case MessageResolved:
		return "Resolved"
	case MessageCreated:
		return "Created"
	case MessageAssigned:
		return "Assigned"
	case MessageCleared:
		return "Cleared"
	case MessageRetrying:
		return "Retrying"
	case MessageDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// SelectionMessage carries a "teacher chosen for section X" intent from the
// teacher-selection page back to the planning grid.
//
// A message is produced by the selection page, consumed exactly once by the
// reconciliation engine (or dropped after exhausting retries), then removed
// from the channel.
type SelectionMessage struct {
	// ID uniquely identifies the message for logging and drop tracking.
	ID string `json:"id"`

	// ClassKey addresses the target grid row (see grid.Store.Key).
	ClassKey string `json:"classKey"`

	// Teachers lists the chosen teachers.
	Teachers []TeacherRef `json:"teachers"`

	// SourceRowIndex is the row index visible to the selection page when the
	// choice was made, or -1 when unknown. Feeds the positional resolver.
	SourceRowIndex int `json:"sourceRowIndex"`

	// Observation is free-form text forwarded to the assignment endpoint.
	Observation string `json:"observation,omitempty"`

	// RetryCount is the number of resolution attempts already made.
	RetryCount int `json:"retryCount"`

	// PublishedAt is when the selection page published the message.
	PublishedAt time.Time `json:"publishedAt"`
}
