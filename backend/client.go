package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ElCzar/secchub-planning/types"
)

// ClientConfig configures the REST backend client.
type ClientConfig struct {
	// BaseURL is the backend root (e.g., "https://secchub.example.edu/api").
	BaseURL string `yaml:"baseUrl" validate:"required,url"`

	// Token is the bearer token attached to every request ("" disables auth).
	Token string `yaml:"token"`

	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`
}

// Client implements Service over the REST backend.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

var _ Service = (*Client)(nil)

// NewClient creates a REST backend client.
//
// Parameters:
//   - cfg: Client configuration
//
// Returns:
//   - *Client: Initialized client
//   - error: Validation error if the configuration is invalid
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListSections fetches all sections of the current term.
func (c *Client) ListSections(ctx context.Context) ([]types.SectionRow, error) {
	var raws []rawSection
	if err := c.do(ctx, "list_sections", http.MethodGet, "/sections", nil, &raws); err != nil {
		return nil, err
	}

	rows := make([]types.SectionRow, 0, len(raws))
	for _, raw := range raws {
		row, err := decodeSection(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// CreateSection persists a new section. See Service.CreateSection.
func (c *Client) CreateSection(ctx context.Context, row types.SectionRow) (types.SectionRow, error) {
	payload := encodeSection(row)
	payload.ID = 0 // identity is the backend's to assign

	var raw rawSection
	if err := c.do(ctx, "create_section", http.MethodPost, "/sections", payload, &raw); err != nil {
		return types.SectionRow{}, err
	}

	return decodeSection(raw)
}

// UpdateSection persists changes to an existing section.
func (c *Client) UpdateSection(ctx context.Context, id int64, row types.SectionRow) (types.SectionRow, error) {
	var raw rawSection
	path := fmt.Sprintf("/sections/%d", id)
	if err := c.do(ctx, "update_section", http.MethodPut, path, encodeSection(row), &raw); err != nil {
		return types.SectionRow{}, err
	}

	return decodeSection(raw)
}

// DeleteSection removes a persisted section.
func (c *Client) DeleteSection(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/sections/%d", id)

	return c.do(ctx, "delete_section", http.MethodDelete, path, nil, nil)
}

// AssignTeacher assigns a teacher to a persisted section. See
// Service.AssignTeacher.
func (c *Client) AssignTeacher(ctx context.Context, sectionID, teacherID int64, hours int, observation string) (types.TeacherRef, error) {
	body := struct {
		TeacherID   int64  `json:"teacherId"`
		Hours       int    `json:"hours"`
		Observation string `json:"observation,omitempty"`
	}{TeacherID: teacherID, Hours: hours, Observation: observation}

	var raw rawTeacher
	path := fmt.Sprintf("/sections/%d/teachers", sectionID)
	if err := c.do(ctx, "assign_teacher", http.MethodPost, path, body, &raw); err != nil {
		return types.TeacherRef{}, err
	}
	if err := validate.Struct(raw); err != nil {
		return types.TeacherRef{}, &DecodeError{Entity: "teacher", Err: err}
	}

	return decodeTeacher(raw), nil
}

// FetchAssignmentStatus fetches confirmation state for the given sections.
func (c *Client) FetchAssignmentStatus(ctx context.Context, sectionIDs []int64) ([]types.SectionStatus, error) {
	body := struct {
		SectionIDs []int64 `json:"sectionIds"`
	}{SectionIDs: sectionIDs}

	var raws []rawSectionStatus
	if err := c.do(ctx, "fetch_status", http.MethodPost, "/sections/status", body, &raws); err != nil {
		return nil, err
	}

	statuses := make([]types.SectionStatus, 0, len(raws))
	for _, raw := range raws {
		st, err := decodeStatus(raw)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}

	return statuses, nil
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Entity: op, Err: err}
	}

	return nil
}
