package types

import (
	"time"
)

// RowState represents the lifecycle state of a grid row.
//
// Rows progress through a defined lifecycle:
//
//	RowNew → RowExisting → RowDeleted
//
// A row with a backend identity is always RowExisting or RowDeleted; a row in
// RowNew never carries a backend identity.
type RowState int

const (
	// RowNew is a locally created row that has not been persisted yet.
	RowNew RowState = iota

	// RowExisting is a row that has a backend identity.
	RowExisting

	// RowDeleted is a row marked for removal.
	RowDeleted
)

// String returns the string representation of the row state.
func (s RowState) String() string {
	switch s {
	case RowNew:
		return "New"
	case RowExisting:
		return "Existing"
	case RowDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// ConfirmationStatus is the per-teacher confirmation state of an assignment.
type ConfirmationStatus int

const (
	// StatusPending means the teacher has not responded yet.
	StatusPending ConfirmationStatus = iota

	// StatusConfirmed means the teacher accepted the assignment.
	StatusConfirmed

	// StatusRejected means the teacher declined the assignment.
	StatusRejected
)

// String returns the string representation of the confirmation status.
func (s ConfirmationStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// ParseConfirmationStatus maps a backend status string to a ConfirmationStatus.
//
// Unrecognized values map to StatusPending, matching the backend contract
// where a missing or unknown status means "not yet confirmed".
//
// Parameters:
//   - s: Backend status string (case-sensitive)
//
// Returns:
//   - ConfirmationStatus: Parsed status
//   - bool: false if the value was unrecognized
func ParseConfirmationStatus(s string) (ConfirmationStatus, bool) {
	switch s {
	case "PENDING":
		return StatusPending, true
	case "CONFIRMED":
		return StatusConfirmed, true
	case "REJECTED":
		return StatusRejected, true
	default:
		return StatusPending, false
	}
}

// ScheduleEntry is a single weekly time block of a section.
//
// Times use the "15:04" wall-clock format. Entries carry no independent
// identity; they exist only to derive the section's total weekly load.
type ScheduleEntry struct {
	// Day is the weekday label (e.g., "MONDAY").
	Day string `json:"day"`

	// StartTime is the block start in "15:04" format ("" if unset).
	StartTime string `json:"startTime"`

	// EndTime is the block end in "15:04" format ("" if unset).
	EndTime string `json:"endTime"`
}

// TeacherRef is a teacher assigned to a section row.
type TeacherRef struct {
	// ID is the teacher's backend identifier.
	ID int64 `json:"id"`

	// Name is the teacher's display name.
	Name string `json:"name"`

	// AvailableHours is the teacher's remaining weekly capacity.
	AvailableHours int `json:"availableHours"`

	// AssignedHours is the load assigned to this teacher for this section.
	AssignedHours int `json:"assignedHours"`

	// Status is the teacher's confirmation state for this assignment.
	Status ConfirmationStatus `json:"status"`
}

// SectionRow is one planned course section as the grid sees it.
//
// Identity is twofold: LocalKey is stable within a session and derived from
// the row's content; BackendID exists only once the section is persisted.
type SectionRow struct {
	// LocalKey is the session-stable addressing key (see grid.Store.Key).
	LocalKey string `json:"localKey"`

	// BackendID is the backend identity, 0 while unpersisted.
	BackendID int64 `json:"backendId"`

	// CourseID references the course this section offers.
	CourseID int64 `json:"courseId"`

	// CourseName is the course display name, part of the addressing key.
	CourseName string `json:"courseName"`

	// Section is the section label (e.g., "SIS-01"), part of the addressing key.
	Section string `json:"section"`

	// Capacity is the maximum enrollment.
	Capacity int `json:"capacity"`

	// StartDate and EndDate bound the term the section runs in.
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	// ClassroomID references the assigned classroom (0 if unassigned).
	ClassroomID int64 `json:"classroomId"`

	// Schedules lists the weekly time blocks.
	Schedules []ScheduleEntry `json:"schedules"`

	// Teachers lists assigned teachers. No two entries share the same ID.
	Teachers []TeacherRef `json:"teachers"`

	// State is the lifecycle state.
	State RowState `json:"state"`

	// Editing suppresses auto-save while the row is actively being edited.
	Editing bool `json:"editing"`

	// LastAssignedAt is when a teacher was last assigned to this row.
	// Zero until the first assignment. Drives the assignment cooldown guard.
	LastAssignedAt time.Time `json:"lastAssignedAt"`
}

// HasTeacher reports whether the row already holds a teacher with the given id.
func (r *SectionRow) HasTeacher(teacherID int64) bool {
	for i := range r.Teachers {
		if r.Teachers[i].ID == teacherID {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the row.
//
// The grid store returns clones from all read paths so callers can never
// mutate shared state through an aliased slice.
func (r SectionRow) Clone() SectionRow {
	out := r
	if r.Schedules != nil {
		out.Schedules = make([]ScheduleEntry, len(r.Schedules))
		copy(out.Schedules, r.Schedules)
	}
	if r.Teachers != nil {
		out.Teachers = make([]TeacherRef, len(r.Teachers))
		copy(out.Teachers, r.Teachers)
	}

	return out
}

// TeacherStatus is one teacher's confirmation state inside a status batch.
type TeacherStatus struct {
	// TeacherID is the teacher's backend identifier.
	TeacherID int64 `json:"teacherId"`

	// Status is the authoritative confirmation state.
	Status ConfirmationStatus `json:"status"`
}

// SectionStatus is the authoritative per-section slice of a status batch
// returned by the assignment status endpoint.
type SectionStatus struct {
	// SectionID is the section's backend identity.
	SectionID int64 `json:"sectionId"`

	// TeacherStatuses lists the confirmation state per assigned teacher.
	TeacherStatuses []TeacherStatus `json:"teacherStatuses"`

	// HasAssignment reports whether the backend holds any assignment at all.
	HasAssignment bool `json:"hasAssignment"`
}
