package backend

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ElCzar/secchub-planning/types"
)

const dateLayout = "2006-01-02"

// validate is shared across decodes; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// rawSection is a section as the backend serializes it. Fields are read
// through struct validation instead of defensively with fallbacks.
type rawSection struct {
	ID          int64         `json:"id" validate:"required"`
	CourseID    int64         `json:"courseId"`
	CourseName  string        `json:"courseName" validate:"required"`
	Section     string        `json:"section" validate:"required"`
	Capacity    int           `json:"capacity" validate:"min=0"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	ClassroomID int64         `json:"classroomId"`
	Schedules   []rawSchedule `json:"schedules"`
	Teachers    []rawTeacher  `json:"teachers"`
}

type rawSchedule struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type rawTeacher struct {
	ID             int64  `json:"id" validate:"required"`
	Name           string `json:"name"`
	AvailableHours int    `json:"availableHours"`
	AssignedHours  int    `json:"assignedHours"`
	Status         string `json:"status"`
}

type rawSectionStatus struct {
	SectionID       int64              `json:"sectionId" validate:"required"`
	HasAssignment   bool               `json:"hasAssignment"`
	TeacherStatuses []rawTeacherStatus `json:"teacherStatuses" validate:"dive"`
}

type rawTeacherStatus struct {
	TeacherID int64  `json:"teacherId" validate:"required"`
	Status    string `json:"status"`
}

// decodeSection converts a raw section payload into the typed model.
func decodeSection(raw rawSection) (types.SectionRow, error) {
	if err := validate.Struct(raw); err != nil {
		return types.SectionRow{}, &DecodeError{Entity: "section", Err: err}
	}

	row := types.SectionRow{
		BackendID:   raw.ID,
		CourseID:    raw.CourseID,
		CourseName:  raw.CourseName,
		Section:     raw.Section,
		Capacity:    raw.Capacity,
		ClassroomID: raw.ClassroomID,
		State:       types.RowExisting,
	}

	if raw.StartDate != "" {
		t, err := time.Parse(dateLayout, raw.StartDate)
		if err != nil {
			return types.SectionRow{}, &DecodeError{Entity: "section", Err: err}
		}
		row.StartDate = t
	}
	if raw.EndDate != "" {
		t, err := time.Parse(dateLayout, raw.EndDate)
		if err != nil {
			return types.SectionRow{}, &DecodeError{Entity: "section", Err: err}
		}
		row.EndDate = t
	}

	row.Schedules = make([]types.ScheduleEntry, len(raw.Schedules))
	for i, s := range raw.Schedules {
		row.Schedules[i] = types.ScheduleEntry{Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime}
	}

	row.Teachers = make([]types.TeacherRef, len(raw.Teachers))
	for i, t := range raw.Teachers {
		row.Teachers[i] = decodeTeacher(t)
	}

	return row, nil
}

func decodeTeacher(raw rawTeacher) types.TeacherRef {
	status, _ := types.ParseConfirmationStatus(raw.Status)

	return types.TeacherRef{
		ID:             raw.ID,
		Name:           raw.Name,
		AvailableHours: raw.AvailableHours,
		AssignedHours:  raw.AssignedHours,
		Status:         status,
	}
}

// decodeStatus converts a raw status batch entry into the typed model.
func decodeStatus(raw rawSectionStatus) (types.SectionStatus, error) {
	if err := validate.Struct(raw); err != nil {
		return types.SectionStatus{}, &DecodeError{Entity: "status", Err: err}
	}

	st := types.SectionStatus{
		SectionID:       raw.SectionID,
		HasAssignment:   raw.HasAssignment,
		TeacherStatuses: make([]types.TeacherStatus, len(raw.TeacherStatuses)),
	}
	for i, ts := range raw.TeacherStatuses {
		status, _ := types.ParseConfirmationStatus(ts.Status)
		st.TeacherStatuses[i] = types.TeacherStatus{TeacherID: ts.TeacherID, Status: status}
	}

	return st, nil
}

// encodeSection converts a typed row into the backend's write shape.
func encodeSection(row types.SectionRow) rawSection {
	raw := rawSection{
		ID:          row.BackendID,
		CourseID:    row.CourseID,
		CourseName:  row.CourseName,
		Section:     row.Section,
		Capacity:    row.Capacity,
		ClassroomID: row.ClassroomID,
	}
	if !row.StartDate.IsZero() {
		raw.StartDate = row.StartDate.Format(dateLayout)
	}
	if !row.EndDate.IsZero() {
		raw.EndDate = row.EndDate.Format(dateLayout)
	}
	raw.Schedules = make([]rawSchedule, len(row.Schedules))
	for i, s := range row.Schedules {
		raw.Schedules[i] = rawSchedule{Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime}
	}

	return raw
}
