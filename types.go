package planning

import "github.com/ElCzar/secchub-planning/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root planning
// package, while still providing convenient `planning.SectionRow`,
// `planning.Logger`, etc. for users.
type (
	SectionRow       = types.SectionRow
	TeacherRef       = types.TeacherRef
	ScheduleEntry    = types.ScheduleEntry
	SelectionMessage = types.SelectionMessage
	SectionStatus    = types.SectionStatus
	TeacherStatus    = types.TeacherStatus
	RowState         = types.RowState
	MessageState     = types.MessageState
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Clock            = types.Clock
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Hooks            = types.Hooks
)

// Re-export RowState constants from the types subpackage.
const (
	RowNew      = types.RowNew
	RowExisting = types.RowExisting
	RowDeleted  = types.RowDeleted
)

// Re-export ConfirmationStatus constants from the types subpackage.
const (
	StatusPending   = types.StatusPending
	StatusConfirmed = types.StatusConfirmed
	StatusRejected  = types.StatusRejected
)
