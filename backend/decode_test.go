package backend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/types"
)

func TestDecodeSection_DateParsing(t *testing.T) {
	raw := rawSection{
		ID:         10,
		CourseName: "Redes",
		Section:    "SIS-01",
		StartDate:  "2026-02-02",
	}

	row, err := decodeSection(raw)
	require.NoError(t, err)
	require.Equal(t, 2026, row.StartDate.Year())
	require.True(t, row.EndDate.IsZero())

	raw.StartDate = "02/02/2026"
	_, err = decodeSection(raw)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestDecodeTeacher_UnknownStatusFallsBackToPending(t *testing.T) {
	ref := decodeTeacher(rawTeacher{ID: 7, Status: "SOMETHING_NEW"})
	require.Equal(t, types.StatusPending, ref.Status)

	ref = decodeTeacher(rawTeacher{ID: 7, Status: "REJECTED"})
	require.Equal(t, types.StatusRejected, ref.Status)
}

func TestDecodeStatus_RequiresTeacherIDs(t *testing.T) {
	_, err := decodeStatus(rawSectionStatus{
		SectionID:       10,
		TeacherStatuses: []rawTeacherStatus{{Status: "CONFIRMED"}}, // no teacherId
	})
	require.Error(t, err)
}

func TestEncodeSection_RoundsTripWriteShape(t *testing.T) {
	row := types.SectionRow{
		BackendID:  10,
		CourseName: "Redes",
		Section:    "SIS-01",
		Capacity:   25,
		Schedules:  []types.ScheduleEntry{{Day: "MONDAY", StartTime: "08:00", EndTime: "10:00"}},
	}

	raw := encodeSection(row)
	require.Equal(t, int64(10), raw.ID)
	require.Empty(t, raw.StartDate) // zero dates are omitted, not "0001-01-01"
	require.Len(t, raw.Schedules, 1)
}
