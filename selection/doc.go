// Package selection carries teacher-selection intents from the selection
// page back to the planning grid.
//
// The selection page and the grid live in different navigation contexts, so
// a choice may be published before the grid has finished loading, and the
// grid may not have a backend identity for the addressed row yet. The
// channel therefore holds one message per class key (publish overwrites),
// replays the current message map to subscribers on every change, and only
// drops a message when a consumer explicitly clears it.
//
// Two implementations of Bus are provided:
//
//   - Channel: in-memory, for the common case of one process hosting both
//     pages
//   - KVChannel: backed by a NATS JetStream KV bucket, for deployments where
//     the selection page and the grid run in separate processes
package selection
