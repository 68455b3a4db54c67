package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking message processing. Hooks receive the engine's lifecycle
// context, which is cancelled during shutdown.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (terminal failures may surface more than once
//     when a message carries several teachers)
//   - Handle errors gracefully (returned errors are logged, never fatal)
type Hooks struct {
	// OnTeacherAssigned is called after a teacher was successfully assigned
	// to a row and the grid was updated.
	OnTeacherAssigned func(ctx context.Context, row SectionRow, teacher TeacherRef) error

	// OnMessageDropped is called when a selection message is discarded, either
	// after exhausting its resolution retries or on a terminal failure.
	// reason is one of "unresolved", "create_failed", "assign_failed".
	OnMessageDropped func(ctx context.Context, msg SelectionMessage, reason string) error

	// OnError is called when a recoverable error occurs.
	OnError func(ctx context.Context, err error) error
}
