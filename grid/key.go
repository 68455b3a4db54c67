package grid

import (
	"fmt"
	"strings"

	"github.com/ElCzar/secchub-planning/types"
)

// Addressing keys have the form "course|section|ref" where ref is either
// "id-<backendId>" (identity form) or "row-<index>" (positional form). The
// pipe separator never occurs in upstream course or section fields, and the
// distinct ref prefixes keep the two forms from colliding.
const (
	keySeparator   = "|"
	identityPrefix = "id-"
	positionPrefix = "row-"
)

// IdentityKey builds the identity-form addressing key for a persisted row.
//
// Parameters:
//   - row: Row with a backend identity (BackendID may be 0 for unsaved rows,
//     producing a key that matches nothing)
//
// Returns:
//   - string: "course|section|id-<backendId>"
func IdentityKey(row types.SectionRow) string {
	return row.CourseName + keySeparator + row.Section + keySeparator +
		fmt.Sprintf("%s%d", identityPrefix, row.BackendID)
}

// PositionalKey builds the positional-form addressing key for a row at the
// given index. Used for rows that have not been persisted yet.
//
// Returns:
//   - string: "course|section|row-<index>"
func PositionalKey(row types.SectionRow, index int) string {
	return row.CourseName + keySeparator + row.Section + keySeparator +
		fmt.Sprintf("%s%d", positionPrefix, index)
}

// Key builds the preferred addressing key for a row: the identity form when
// the row is persisted and preferBackendID is set, the positional form
// otherwise.
func Key(row types.SectionRow, index int, preferBackendID bool) string {
	if preferBackendID && row.BackendID != 0 {
		return IdentityKey(row)
	}

	return PositionalKey(row, index)
}

// ParsedKey is an addressing key split into its components.
type ParsedKey struct {
	// CourseName is the course-name component.
	CourseName string

	// Section is the section-label component.
	Section string

	// Ref is the trailing identity or index component ("" when absent).
	Ref string
}

// ParseKey splits an addressing key into its components.
//
// Keys with fewer than two components are unparseable; the fuzzy resolver
// cannot do anything with them.
//
// Returns:
//   - ParsedKey: Components of the key
//   - bool: false if the key is unparseable
func ParseKey(key string) (ParsedKey, bool) {
	parts := strings.SplitN(key, keySeparator, 3)
	if len(parts) < 2 {
		return ParsedKey{}, false
	}

	parsed := ParsedKey{CourseName: parts[0], Section: parts[1]}
	if len(parts) == 3 {
		parsed.Ref = parts[2]
	}

	return parsed, true
}
