// Package poll keeps the grid's teacher confirmation statuses aligned with
// backend truth without requiring a full grid reload.
package poll
