// Package grid owns the in-memory collection of planned section rows.
//
// The Store is the single shared mutable resource of the planning page: user
// edits, the reconciliation engine, and the status poller all write to it.
// Every write happens under the store's lock and every read path returns
// clones, so "last merge wins per field" holds regardless of which source
// fired last.
//
// The package also defines the addressing scheme shared with the selection
// channel: each row has an identity key (once its backend identity is known)
// and a positional key (before persistence), and the resolver must map either
// form back to the same row.
package grid
