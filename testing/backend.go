package testing

import (
	"context"
	"sync"

	"github.com/ElCzar/secchub-planning/backend"
	"github.com/ElCzar/secchub-planning/types"
)

// AssignCall records one AssignTeacher invocation on the stub backend.
type AssignCall struct {
	SectionID   int64
	TeacherID   int64
	Hours       int
	Observation string
}

// StubBackend is a scripted in-memory backend.Service for tests.
//
// Identities are assigned from a counter starting at 42. Error fields, when
// set, are returned by the corresponding operation instead of performing it.
// All methods are safe for concurrent use.
type StubBackend struct {
	mu sync.Mutex

	nextID   int64
	sections map[int64]types.SectionRow
	statuses []types.SectionStatus

	listRows []types.SectionRow

	assignCalls []AssignCall
	createCalls int
	fetchCalls  int

	// Scripted failures.
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	AssignErr error
	FetchErr  error
}

var _ backend.Service = (*StubBackend)(nil)

// NewStubBackend creates an empty stub backend.
func NewStubBackend() *StubBackend {
	return &StubBackend{
		nextID:   42,
		sections: make(map[int64]types.SectionRow),
	}
}

// SetListRows scripts the result of ListSections.
func (b *StubBackend) SetListRows(rows []types.SectionRow) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listRows = rows
}

// SetStatuses scripts the result of FetchAssignmentStatus.
func (b *StubBackend) SetStatuses(statuses []types.SectionStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.statuses = statuses
}

// AssignCalls returns all recorded AssignTeacher invocations.
func (b *StubBackend) AssignCalls() []AssignCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]AssignCall, len(b.assignCalls))
	copy(out, b.assignCalls)

	return out
}

// CreateCalls returns how many times CreateSection was invoked.
func (b *StubBackend) CreateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.createCalls
}

// FetchCalls returns how many times FetchAssignmentStatus was invoked.
func (b *StubBackend) FetchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.fetchCalls
}

// ListSections implements backend.Service.
func (b *StubBackend) ListSections(_ context.Context) ([]types.SectionRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ListErr != nil {
		return nil, b.ListErr
	}

	out := make([]types.SectionRow, len(b.listRows))
	for i, row := range b.listRows {
		out[i] = row.Clone()
	}

	return out, nil
}

// CreateSection implements backend.Service.
func (b *StubBackend) CreateSection(_ context.Context, row types.SectionRow) (types.SectionRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.createCalls++
	if b.CreateErr != nil {
		return types.SectionRow{}, b.CreateErr
	}

	created := row.Clone()
	created.BackendID = b.nextID
	created.State = types.RowExisting
	b.nextID++
	b.sections[created.BackendID] = created

	return created, nil
}

// UpdateSection implements backend.Service.
func (b *StubBackend) UpdateSection(_ context.Context, id int64, row types.SectionRow) (types.SectionRow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.UpdateErr != nil {
		return types.SectionRow{}, b.UpdateErr
	}

	updated := row.Clone()
	updated.BackendID = id
	updated.State = types.RowExisting
	b.sections[id] = updated

	return updated, nil
}

// DeleteSection implements backend.Service.
func (b *StubBackend) DeleteSection(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.sections, id)

	return nil
}

// AssignTeacher implements backend.Service.
func (b *StubBackend) AssignTeacher(_ context.Context, sectionID, teacherID int64, hours int, observation string) (types.TeacherRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.assignCalls = append(b.assignCalls, AssignCall{
		SectionID:   sectionID,
		TeacherID:   teacherID,
		Hours:       hours,
		Observation: observation,
	})
	if b.AssignErr != nil {
		return types.TeacherRef{}, b.AssignErr
	}

	return types.TeacherRef{ID: teacherID, AssignedHours: hours, Status: types.StatusPending}, nil
}

// FetchAssignmentStatus implements backend.Service.
func (b *StubBackend) FetchAssignmentStatus(_ context.Context, _ []int64) ([]types.SectionStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fetchCalls++
	if b.FetchErr != nil {
		return nil, b.FetchErr
	}

	out := make([]types.SectionStatus, len(b.statuses))
	copy(out, b.statuses)

	return out, nil
}
