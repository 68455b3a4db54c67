package selection

import (
	"time"

	"github.com/google/uuid"

	"github.com/ElCzar/secchub-planning/types"
)

// PublishOptions carries the optional context of a selection.
type PublishOptions struct {
	// SourceRowIndex is the grid position of the addressed row as the
	// selection page saw it, or -1 when unknown.
	SourceRowIndex int

	// Observation is free-form text forwarded to the assignment endpoint.
	Observation string
}

// Snapshot is the channel's current state: one message per class key plus
// the publish order of the keys.
type Snapshot struct {
	// Messages maps class keys to their pending message.
	Messages map[string]types.SelectionMessage

	// Order lists the class keys in publish order. Overwriting a key keeps
	// its original position.
	Order []string
}

// Pending returns the pending messages in publish order.
func (s Snapshot) Pending() []types.SelectionMessage {
	out := make([]types.SelectionMessage, 0, len(s.Order))
	for _, key := range s.Order {
		if msg, ok := s.Messages[key]; ok {
			out = append(out, msg)
		}
	}

	return out
}

// Bus is the selection channel contract shared by the in-memory and NATS
// KV implementations.
//
// Messages are not dropped when no consumer is ready: a message stays on the
// bus until a consumer clears it, and subscribers always receive the full
// current snapshot first.
type Bus interface {
	// Publish appends or overwrites the message for classKey and notifies
	// subscribers.
	//
	// Parameters:
	//   - classKey: Addressing key of the target grid row
	//   - teachers: Chosen teachers
	//   - opts: Optional selection context
	//
	// Returns:
	//   - types.SelectionMessage: The published message (with assigned ID)
	//   - error: Transport error (always nil for the in-memory channel)
	Publish(classKey string, teachers []types.TeacherRef, opts PublishOptions) (types.SelectionMessage, error)

	// Republish puts an existing message back on the bus, preserving its ID
	// and publish time. Used by the engine to re-enqueue a message with an
	// incremented retry count.
	Republish(msg types.SelectionMessage) error

	// Subscribe registers a subscriber and returns a channel that receives
	// the current snapshot immediately and again after every publish/clear.
	//
	// Notifications coalesce: a slow subscriber skips intermediate snapshots
	// and observes the latest state on its next receive.
	//
	// Returns:
	//   - <-chan Snapshot: Snapshot stream
	//   - func(): Unsubscribe; closes the stream
	Subscribe() (<-chan Snapshot, func())

	// Clear removes the message for classKey and notifies subscribers.
	// Idempotent: clearing an absent key is a no-op.
	Clear(classKey string) error
}

// newMessage builds a message with a fresh ID and publish timestamp.
func newMessage(classKey string, teachers []types.TeacherRef, opts PublishOptions) types.SelectionMessage {
	refs := make([]types.TeacherRef, len(teachers))
	copy(refs, teachers)

	return types.SelectionMessage{
		ID:             uuid.NewString(),
		ClassKey:       classKey,
		Teachers:       refs,
		SourceRowIndex: opts.SourceRowIndex,
		Observation:    opts.Observation,
		PublishedAt:    time.Now(),
	}
}
