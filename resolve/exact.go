package resolve

import (
	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/types"
)

// Exact matches a key against each row's identity-form key.
//
// This is the strongest strategy: it only hits once the addressed row has
// adopted its backend identity, and the key was built from that identity.
type Exact struct{}

var _ Strategy = (*Exact)(nil)

// NewExact creates a new exact identity match strategy.
//
// Returns:
//   - *Exact: Initialized strategy
func NewExact() *Exact {
	return &Exact{}
}

// Name returns "exact".
func (*Exact) Name() string { return "exact" }

// Match compares key against the identity-form key of every persisted row.
func (*Exact) Match(key string, rows []types.SectionRow) (int, bool) {
	for i := range rows {
		if rows[i].BackendID == 0 {
			continue
		}
		if grid.IdentityKey(rows[i]) == key {
			return i, true
		}
	}

	return 0, false
}
