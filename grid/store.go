package grid

import (
	"sync"
	"time"

	"github.com/ElCzar/secchub-planning/types"
)

// Store is the source of truth for what the user currently sees and edits.
//
// All methods are safe for concurrent use. Read paths return clones; a caller
// can never reach the store's internal slices through a returned row.
type Store struct {
	mu   sync.RWMutex
	rows []types.SectionRow
}

// New creates an empty grid store.
func New() *Store {
	return &Store{}
}

// LoadRows replaces the full row set, typically after a backend fetch.
//
// Local keys are regenerated for every row. Prior local-only edits are not
// preserved; callers must re-apply any pending reconciliation afterward.
//
// Parameters:
//   - rows: New row set (cloned on the way in)
func (s *Store) LoadRows(rows []types.SectionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make([]types.SectionRow, len(rows))
	for i, row := range rows {
		clone := row.Clone()
		clone.LocalKey = Key(clone, i, true)
		s.rows[i] = clone
	}
}

// Len returns the number of rows, including deleted ones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rows)
}

// Row returns a clone of the row at index.
//
// Returns:
//   - types.SectionRow: Cloned row (zero value if out of range)
//   - bool: false if index is out of range
func (s *Store) Row(index int) (types.SectionRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.rows) {
		return types.SectionRow{}, false
	}

	return s.rows[index].Clone(), true
}

// Rows returns clones of all rows in order.
func (s *Store) Rows() []types.SectionRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SectionRow, len(s.rows))
	for i := range s.rows {
		out[i] = s.rows[i].Clone()
	}

	return out
}

// Visible returns clones of all rows except deleted ones, preserving order.
// This is the read model consumed by the rendering layer.
func (s *Store) Visible() []types.SectionRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SectionRow, 0, len(s.rows))
	for i := range s.rows {
		if s.rows[i].State == types.RowDeleted {
			continue
		}
		out = append(out, s.rows[i].Clone())
	}

	return out
}

// Patch holds the fields of a shallow row merge. Nil fields are left alone.
type Patch struct {
	CourseID    *int64
	CourseName  *string
	Section     *string
	Capacity    *int
	StartDate   *time.Time
	EndDate     *time.Time
	ClassroomID *int64
	Schedules   *[]types.ScheduleEntry
	Editing     *bool
}

// PatchRow shallow-merges the given fields into the row at index.
//
// Whether the change should trigger a backend save (auto-save-on-blur for
// non-editing Existing rows) is the caller's concern, not the store's.
//
// Returns:
//   - types.SectionRow: Clone of the row after the merge
//   - bool: false if index is out of range
func (s *Store) PatchRow(index int, patch Patch) (types.SectionRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return types.SectionRow{}, false
	}

	row := &s.rows[index]
	if patch.CourseID != nil {
		row.CourseID = *patch.CourseID
	}
	if patch.CourseName != nil {
		row.CourseName = *patch.CourseName
	}
	if patch.Section != nil {
		row.Section = *patch.Section
	}
	if patch.Capacity != nil {
		row.Capacity = *patch.Capacity
	}
	if patch.StartDate != nil {
		row.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		row.EndDate = *patch.EndDate
	}
	if patch.ClassroomID != nil {
		row.ClassroomID = *patch.ClassroomID
	}
	if patch.Schedules != nil {
		row.Schedules = make([]types.ScheduleEntry, len(*patch.Schedules))
		copy(row.Schedules, *patch.Schedules)
	}
	if patch.Editing != nil {
		row.Editing = *patch.Editing
	}
	row.LocalKey = Key(*row, index, true)

	return row.Clone(), true
}

// Update applies fn to the row at index under the store's lock.
//
// fn must not call back into the store. Used by the engine for compound
// mutations that must be atomic with respect to other writers.
//
// Returns:
//   - bool: false if index is out of range
func (s *Store) Update(index int, fn func(*types.SectionRow)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return false
	}

	fn(&s.rows[index])
	s.rows[index].LocalKey = Key(s.rows[index], index, true)

	return true
}

// AppendRow appends a row and returns its index.
func (s *Store) AppendRow(row types.SectionRow) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := row.Clone()
	index := len(s.rows)
	clone.LocalKey = Key(clone, index, true)
	s.rows = append(s.rows, clone)

	return index
}

// EnsureEditableRow guarantees the grid is never literally empty by appending
// one blank New row when the visible view has zero rows.
//
// Returns:
//   - bool: true if a blank row was appended
func (s *Store) EnsureEditableRow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].State != types.RowDeleted {
			return false
		}
	}

	index := len(s.rows)
	blank := types.SectionRow{State: types.RowNew, Editing: true}
	blank.LocalKey = Key(blank, index, true)
	s.rows = append(s.rows, blank)

	return true
}

// MarkDeleted transitions the row at index to the Deleted state.
//
// Returns:
//   - types.SectionRow: Clone of the row as it was marked
//   - bool: false if index is out of range
func (s *Store) MarkDeleted(index int) (types.SectionRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return types.SectionRow{}, false
	}

	s.rows[index].State = types.RowDeleted

	return s.rows[index].Clone(), true
}

// AdoptBackendID records the backend identity a freshly created section was
// assigned, transitioning the row to Existing and regenerating its local key.
//
// Returns:
//   - bool: false if index is out of range
func (s *Store) AdoptBackendID(index int, backendID int64) bool {
	return s.Update(index, func(row *types.SectionRow) {
		row.BackendID = backendID
		row.State = types.RowExisting
	})
}

// AddTeacher appends a teacher to the row at index unless a teacher with the
// same id is already present.
//
// Existing refs are never removed; the grid only accumulates assignments, and
// the status poller owns confirmation updates.
//
// Returns:
//   - bool: true if the teacher was appended, false on duplicate or bad index
func (s *Store) AddTeacher(index int, ref types.TeacherRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.rows) {
		return false
	}

	row := &s.rows[index]
	if row.HasTeacher(ref.ID) {
		return false
	}
	row.Teachers = append(row.Teachers, ref)

	return true
}

// MarkAssigned stamps the row's last-assigned timestamp, which drives the
// engine's assignment cooldown guard.
func (s *Store) MarkAssigned(index int, at time.Time) bool {
	return s.Update(index, func(row *types.SectionRow) {
		row.LastAssignedAt = at
	})
}

// BackendIDs returns the backend identities of all non-deleted persisted
// rows, in row order. The status poller polls exactly this set.
func (s *Store) BackendIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.rows))
	for i := range s.rows {
		if s.rows[i].BackendID != 0 && s.rows[i].State != types.RowDeleted {
			ids = append(ids, s.rows[i].BackendID)
		}
	}

	return ids
}

// IndexByBackendID returns the index of the row with the given backend
// identity.
//
// Returns:
//   - int: Row index
//   - bool: false if no row carries the identity
func (s *Store) IndexByBackendID(backendID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.rows {
		if s.rows[i].BackendID == backendID {
			return i, true
		}
	}

	return 0, false
}

// MergeStatuses merges a fetched status batch into the grid.
//
// For each row, only the Status field of already-present teacher refs is
// updated, and only when the fetched value differs. Refs absent from the
// batch are left untouched: absence is not evidence of removal. Batch entries
// for sections no longer in the grid are ignored.
//
// Returns:
//   - int: Number of teacher statuses that changed
func (s *Store) MergeStatuses(statuses []types.SectionStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, st := range statuses {
		row := s.rowByBackendIDLocked(st.SectionID)
		if row == nil {
			continue
		}
		for _, ts := range st.TeacherStatuses {
			for i := range row.Teachers {
				if row.Teachers[i].ID != ts.TeacherID {
					continue
				}
				if row.Teachers[i].Status != ts.Status {
					row.Teachers[i].Status = ts.Status
					changed++
				}
			}
		}
	}

	return changed
}

func (s *Store) rowByBackendIDLocked(backendID int64) *types.SectionRow {
	for i := range s.rows {
		if s.rows[i].BackendID == backendID {
			return &s.rows[i]
		}
	}

	return nil
}
