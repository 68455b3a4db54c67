package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElCzar/secchub-planning/types"
)

func resolverRows() []types.SectionRow {
	return []types.SectionRow{
		{BackendID: 42, CourseName: "Redes", Section: "SIS-01", State: types.RowExisting},
		{CourseName: "Bases de Datos", Section: "SIS-02", State: types.RowNew},
		{CourseName: "Redes", Section: "SIS-03", State: types.RowNew},
	}
}

func TestExactMatch(t *testing.T) {
	r := NewDefault()

	idx, strategy, ok := r.Resolve("Redes|SIS-01|id-42", resolverRows())
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, "exact", strategy)
}

func TestExactSkipsUnsavedRows(t *testing.T) {
	// An unsaved row has BackendID zero; a key claiming id-0 must not hit it.
	idx, ok := NewExact().Match("Bases de Datos|SIS-02|id-0", resolverRows())
	require.False(t, ok)
	require.Zero(t, idx)
}

func TestPositionalMatch(t *testing.T) {
	r := NewDefault()

	idx, strategy, ok := r.Resolve("Bases de Datos|SIS-02|row-1", resolverRows())
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, "positional", strategy)
}

func TestFuzzyFallbackOnStaleIndex(t *testing.T) {
	r := NewDefault()

	// The index component is stale (row moved), but course+section still
	// identify the row.
	idx, strategy, ok := r.Resolve("Bases de Datos|SIS-02|row-7", resolverRows())
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, "fuzzy", strategy)
}

func TestFuzzySkipsDeletedRows(t *testing.T) {
	rows := resolverRows()
	rows[1].State = types.RowDeleted

	_, ok := NewFuzzy().Match("Bases de Datos|SIS-02|row-7", rows)
	require.False(t, ok)
}

func TestExactWinsOverFuzzy(t *testing.T) {
	// Rows 0 and 2 share the course name; the identity key must pick row 0
	// even though fuzzy would also hit it.
	r := NewDefault()

	idx, strategy, ok := r.Resolve("Redes|SIS-01|id-42", resolverRows())
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Equal(t, "exact", strategy)
}

func TestUnresolved(t *testing.T) {
	r := NewDefault()

	_, _, ok := r.Resolve("Quimica|QMC-01|row-9", resolverRows())
	require.False(t, ok)

	_, _, ok = r.Resolve("unparseable", resolverRows())
	require.False(t, ok)

	_, _, ok = r.Resolve("Redes|SIS-01|id-42", nil)
	require.False(t, ok)
}
