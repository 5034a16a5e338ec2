package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/pkg/pointer"
)

// Three generations: 1 and 2 are parents of 3; 3 and 4 are parents of 5.
func lineageSnapshot() *Snapshot {
	return &Snapshot{
		People: []Person{
			{ID: 1, GivenName: "Karl", FamilyName: "Holm", BirthDate: pointer.To("1850-01-01")},
			{ID: 2, GivenName: "Maria", FamilyName: "Holm", BirthDate: pointer.To("1852-07-09")},
			{ID: 3, GivenName: "Erik", FamilyName: "Holm", BirthDate: pointer.To("1880-03-15")},
			{ID: 4, GivenName: "Sofia", FamilyName: "Berg", BirthDate: pointer.To("1884-11-02")},
			{ID: 5, GivenName: "Anna", FamilyName: "Holm", BirthDate: pointer.To("1910-05-21")},
		},
		Edges: []Edge{
			{ID: 1, Person1ID: 1, Person2ID: 3, Type: "parent"},
			{ID: 2, Person1ID: 2, Person2ID: 3, Type: "parent"},
			{ID: 3, Person1ID: 3, Person2ID: 5, Type: "parent"},
			{ID: 4, Person1ID: 4, Person2ID: 5, Type: "parent"},
			{ID: 5, Person1ID: 1, Person2ID: 2, Type: "spouse"},
		},
	}
}

func ids(lineage []Lineage) []int64 {
	out := make([]int64, len(lineage))
	for i, l := range lineage {
		out[i] = l.Person.ID
	}
	return out
}

func TestAncestors(t *testing.T) {
	lineage, err := Ancestors(lineageSnapshot(), 5, 0)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4, 1, 2}, ids(lineage))
	assert.Equal(t, 1, lineage[0].Generation)
	assert.Equal(t, 1, lineage[1].Generation)
	assert.Equal(t, 2, lineage[2].Generation)
	assert.Equal(t, 2, lineage[3].Generation)
}

func TestAncestorsDepthLimited(t *testing.T) {
	lineage, err := Ancestors(lineageSnapshot(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(lineage))
}

func TestDescendants(t *testing.T) {
	lineage, err := Descendants(lineageSnapshot(), 1, 0)
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 5}, ids(lineage))
	assert.Equal(t, 1, lineage[0].Generation)
	assert.Equal(t, 2, lineage[1].Generation)
}

// Spouse and sibling edges never contribute to walks.
func TestWalkIgnoresSymmetricEdges(t *testing.T) {
	lineage, err := Descendants(lineageSnapshot(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids(lineage))
}

func TestWalkUnknownRoot(t *testing.T) {
	_, err := Ancestors(lineageSnapshot(), 99, 0)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

// Within a generation, ordering is by birth date, undated last, ties by id.
func TestWalkOrderingWithinGeneration(t *testing.T) {
	snapshot := &Snapshot{
		People: []Person{
			{ID: 1, GivenName: "Root", FamilyName: "X"},
			{ID: 7, GivenName: "Late", FamilyName: "X", BirthDate: pointer.To("1902-01-01")},
			{ID: 8, GivenName: "Early", FamilyName: "X", BirthDate: pointer.To("1899-01-01")},
			{ID: 9, GivenName: "Undated", FamilyName: "X"},
		},
		Edges: []Edge{
			{ID: 1, Person1ID: 1, Person2ID: 7, Type: "parent"},
			{ID: 2, Person1ID: 1, Person2ID: 8, Type: "parent"},
			{ID: 3, Person1ID: 1, Person2ID: 9, Type: "parent"},
		},
	}

	lineage, err := Descendants(snapshot, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 7, 9}, ids(lineage))
}

// A cyclic parent graph can only come from corrupted storage; the walk must
// refuse rather than loop.
func TestWalkCorruptGraph(t *testing.T) {
	snapshot := &Snapshot{
		People: []Person{
			{ID: 1, GivenName: "A", FamilyName: "X"},
			{ID: 2, GivenName: "B", FamilyName: "X"},
		},
		Edges: []Edge{
			{ID: 1, Person1ID: 1, Person2ID: 2, Type: "parent"},
			{ID: 2, Person1ID: 2, Person2ID: 1, Type: "parent"},
		},
	}

	_, err := Ancestors(snapshot, 1, 0)
	assert.True(t, apperr.IsCode(err, "INTERNAL_ERROR"))
}
