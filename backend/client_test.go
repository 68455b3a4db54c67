package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, Token: "test-token"})
	require.NoError(t, err)

	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Run("missing base url", func(t *testing.T) {
		_, err := NewClient(ClientConfig{})
		require.Error(t, err)
	})

	t.Run("malformed base url", func(t *testing.T) {
		_, err := NewClient(ClientConfig{BaseURL: "not a url"})
		require.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "https://secchub.example.edu/api"})
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

func TestClient_ListSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/sections", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`[
			{
				"id": 10,
				"courseId": 3,
				"courseName": "Redes",
				"section": "SIS-01",
				"capacity": 25,
				"startDate": "2026-02-02",
				"endDate": "2026-06-12",
				"classroomId": 7,
				"schedules": [{"day": "MONDAY", "startTime": "08:00", "endTime": "10:00"}],
				"teachers": [{"id": 7, "name": "Ana Ruiz", "status": "CONFIRMED"}]
			}
		]`))
	})

	rows, err := client.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, int64(10), row.BackendID)
	require.Equal(t, "Redes", row.CourseName)
	require.Equal(t, "SIS-01", row.Section)
	require.Equal(t, types.RowExisting, row.State)
	require.Equal(t, 2026, row.StartDate.Year())
	require.Len(t, row.Schedules, 1)
	require.Equal(t, "08:00", row.Schedules[0].StartTime)
	require.Len(t, row.Teachers, 1)
	require.Equal(t, types.StatusConfirmed, row.Teachers[0].Status)
}

func TestClient_ListSections_RejectsInvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		// Missing id and courseName; the decode boundary must refuse this
		// rather than emit a half-empty row.
		_, _ = w.Write([]byte(`[{"section": "SIS-01"}]`))
	})

	_, err := client.ListSections(context.Background())
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "section", decodeErr.Entity)
}

func TestClient_CreateSection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sections", r.URL.Path)

		var raw rawSection
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Zero(t, raw.ID) // identity is never sent on create
		require.Equal(t, "Redes", raw.CourseName)

		raw.ID = 42
		_ = json.NewEncoder(w).Encode(raw)
	})

	created, err := client.CreateSection(context.Background(), types.SectionRow{
		BackendID:  999, // stale local value, must be stripped
		CourseName: "Redes",
		Section:    "SIS-01",
		Capacity:   25,
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), created.BackendID)
	require.Equal(t, types.RowExisting, created.State)
}

func TestClient_AssignTeacher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/sections/42/teachers", r.URL.Path)

		var body struct {
			TeacherID   int64  `json:"teacherId"`
			Hours       int    `json:"hours"`
			Observation string `json:"observation"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, int64(7), body.TeacherID)
		require.Equal(t, 4, body.Hours)
		require.Equal(t, "prefers mornings", body.Observation)

		_, _ = w.Write([]byte(`{"id": 7, "name": "Ana Ruiz", "assignedHours": 4, "status": "PENDING"}`))
	})

	ref, err := client.AssignTeacher(context.Background(), 42, 7, 4, "prefers mornings")
	require.NoError(t, err)
	require.Equal(t, int64(7), ref.ID)
	require.Equal(t, 4, ref.AssignedHours)
	require.Equal(t, types.StatusPending, ref.Status)
}

func TestClient_FetchAssignmentStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sections/status", r.URL.Path)

		var body struct {
			SectionIDs []int64 `json:"sectionIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []int64{10, 11}, body.SectionIDs)

		_, _ = w.Write([]byte(`[
			{"sectionId": 10, "hasAssignment": true,
			 "teacherStatuses": [{"teacherId": 7, "status": "CONFIRMED"}]},
			{"sectionId": 11, "hasAssignment": false, "teacherStatuses": []}
		]`))
	})

	statuses, err := client.FetchAssignmentStatus(context.Background(), []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.True(t, statuses[0].HasAssignment)
	require.Equal(t, types.StatusConfirmed, statuses[0].TeacherStatuses[0].Status)
	require.False(t, statuses[1].HasAssignment)
}

func TestClient_DeleteSection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/sections/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteSection(context.Background(), 42))
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`teacher load exceeded`))
	})

	_, err := client.AssignTeacher(context.Background(), 42, 7, 4, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "assign_teacher", apiErr.Op)
	require.Contains(t, apiErr.Message, "teacher load exceeded")
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListSections(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
