package resolve

import (
	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/types"
)

// Positional matches a key against each row's positional-form key.
//
// Covers selections made before the addressed row was persisted: the
// selection page only knew the row's grid position at that point.
type Positional struct{}

var _ Strategy = (*Positional)(nil)

// NewPositional creates a new positional match strategy.
//
// Returns:
//   - *Positional: Initialized strategy
func NewPositional() *Positional {
	return &Positional{}
}

// Name returns "positional".
func (*Positional) Name() string { return "positional" }

// Match compares key against the positional-form key of every row.
func (*Positional) Match(key string, rows []types.SectionRow) (int, bool) {
	for i := range rows {
		if grid.PositionalKey(rows[i], i) == key {
			return i, true
		}
	}

	return 0, false
}
