// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/ElCzar/secchub-planning/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnTeacherAssigned: h.OnTeacherAssigned,
		OnMessageDropped:  h.OnMessageDropped,
		OnError:           h.OnError,
	}
}

// OnTeacherAssigned is a no-op implementation.
func (h *NopHooks) OnTeacherAssigned(_ context.Context, _ types.SectionRow, _ types.TeacherRef) error {
	return nil
}

// OnMessageDropped is a no-op implementation.
func (h *NopHooks) OnMessageDropped(_ context.Context, _ types.SelectionMessage, _ string) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
