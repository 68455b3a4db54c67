package backend

import (
	"context"

	"github.com/ElCzar/secchub-planning/types"
)

// Service is the authoritative backend as the engine sees it.
//
// Create, update and delete are not idempotent; the engine never blindly
// retries them. Implementations should honor context cancellation on every
// call.
type Service interface {
	// ListSections fetches all sections of the current term.
	ListSections(ctx context.Context) ([]types.SectionRow, error)

	// CreateSection persists a new section and assigns its backend identity.
	//
	// Returns:
	//   - types.SectionRow: The created section with BackendID set
	//   - error: Creation failure (terminal for the triggering message)
	CreateSection(ctx context.Context, row types.SectionRow) (types.SectionRow, error)

	// UpdateSection persists changes to an existing section.
	UpdateSection(ctx context.Context, id int64, row types.SectionRow) (types.SectionRow, error)

	// DeleteSection removes a persisted section.
	DeleteSection(ctx context.Context, id int64) error

	// AssignTeacher assigns a teacher to a persisted section.
	//
	// Parameters:
	//   - sectionID: Backend identity of the section
	//   - teacherID: Teacher to assign
	//   - hours: Weekly load computed from the section's schedule
	//   - observation: Free-form note ("" if none)
	//
	// Returns:
	//   - types.TeacherRef: The assignment as the backend recorded it
	//   - error: Assignment failure (terminal for the triggering message)
	AssignTeacher(ctx context.Context, sectionID, teacherID int64, hours int, observation string) (types.TeacherRef, error)

	// FetchAssignmentStatus fetches the authoritative confirmation state for
	// the given sections in one batch.
	FetchAssignmentStatus(ctx context.Context, sectionIDs []int64) ([]types.SectionStatus, error)
}
