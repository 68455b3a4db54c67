package resolve

import (
	"github.com/ElCzar/secchub-planning/types"
)

// Strategy is one way of matching a class key to a grid row.
//
// Strategy implementations should:
//   - Be deterministic (same input → same output)
//   - Be stateless (no side effects)
//   - Run quickly (called on every selection message, including retries)
type Strategy interface {
	// Name returns the strategy's identifier, used for logging and metrics.
	Name() string

	// Match finds the row addressed by key.
	//
	// Parameters:
	//   - key: Class key from the selection channel
	//   - rows: Current grid rows in order
	//
	// Returns:
	//   - int: Index of the matched row
	//   - bool: false if this strategy found no match
	Match(key string, rows []types.SectionRow) (int, bool)
}

// Resolver runs an ordered set of strategies, first match wins.
type Resolver struct {
	strategies []Strategy
}

// New creates a resolver with the given strategy chain.
//
// Parameters:
//   - strategies: Strategies tried in order
//
// Returns:
//   - *Resolver: Initialized resolver
func New(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefault creates a resolver with the standard chain:
// exact identity match, then positional match, then fuzzy match.
func NewDefault() *Resolver {
	return New(NewExact(), NewPositional(), NewFuzzy())
}

// Resolve maps a class key to a row index.
//
// Parameters:
//   - key: Class key from the selection channel
//   - rows: Current grid rows in order
//
// Returns:
//   - int: Index of the matched row
//   - string: Name of the strategy that matched ("" on miss)
//   - bool: false when no strategy matched
func (r *Resolver) Resolve(key string, rows []types.SectionRow) (int, string, bool) {
	for _, s := range r.strategies {
		if idx, ok := s.Match(key, rows); ok {
			return idx, s.Name(), true
		}
	}

	return 0, "", false
}
