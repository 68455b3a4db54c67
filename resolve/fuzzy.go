package resolve

import (
	"github.com/ElCzar/secchub-planning/grid"
	"github.com/ElCzar/secchub-planning/types"
)

// Fuzzy matches on course name and section only, ignoring the trailing
// identity or index component of the key.
//
// This is the last resort: it absorbs keys that went stale because the row
// was persisted (index ref no longer valid) or the grid was reordered since
// the selection was made. The first row with matching course and section
// wins, so it can misfire when two rows share both fields; the stronger
// strategies run first precisely to keep that window small.
type Fuzzy struct{}

var _ Strategy = (*Fuzzy)(nil)

// NewFuzzy creates a new fuzzy match strategy.
//
// Returns:
//   - *Fuzzy: Initialized strategy
func NewFuzzy() *Fuzzy {
	return &Fuzzy{}
}

// Name returns "fuzzy".
func (*Fuzzy) Name() string { return "fuzzy" }

// Match splits key into course and section parts and finds the first
// non-deleted row whose fields equal those parts.
func (*Fuzzy) Match(key string, rows []types.SectionRow) (int, bool) {
	parsed, ok := grid.ParseKey(key)
	if !ok {
		return 0, false
	}

	for i := range rows {
		if rows[i].State == types.RowDeleted {
			continue
		}
		if rows[i].CourseName == parsed.CourseName && rows[i].Section == parsed.Section {
			return i, true
		}
	}

	return 0, false
}
