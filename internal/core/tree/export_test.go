package tree

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/pkg/pointer"
)

// Two parents, married, with two children. Snapshot slices are in id order,
// as LoadSnapshot delivers them.
func exportSnapshot() *Snapshot {
	return &Snapshot{
		People: []Person{
			{
				ID: 1, GivenName: "Karl", FamilyName: "Holm",
				Gender:     pointer.To("male"),
				BirthDate:  pointer.To("1871-02-14"),
				DeathDate:  pointer.To("1940-11-30"),
				BirthPlace: pointer.To("Uppsala"),
				DeathPlace: pointer.To("Stockholm"),
			},
			{
				ID: 2, GivenName: "Anna", FamilyName: "Lindqvist",
				Gender:    pointer.To("female"),
				BirthDate: pointer.To("1875-06-01"),
			},
			{
				ID: 3, GivenName: "Elsa", FamilyName: "Holm",
				Gender:    pointer.To("female"),
				BirthDate: pointer.To("1899-12-24"),
			},
			{
				ID: 4, GivenName: "Nils", FamilyName: "Holm",
				BirthDate: pointer.To("1902-03-05"),
			},
		},
		Edges: []Edge{
			{ID: 1, Person1ID: 1, Person2ID: 3, Type: "parent"},
			{ID: 2, Person1ID: 2, Person2ID: 3, Type: "parent"},
			{ID: 3, Person1ID: 1, Person2ID: 4, Type: "parent"},
			{ID: 4, Person1ID: 2, Person2ID: 4, Type: "parent"},
			{ID: 5, Person1ID: 1, Person2ID: 2, Type: "spouse", StartDate: pointer.To("1898-05-20")},
		},
	}
}

func TestRenderGEDCOMGolden(t *testing.T) {
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "export_gedcom", RenderGEDCOM(exportSnapshot()))
}

func TestRenderJSONGolden(t *testing.T) {
	document, err := RenderJSON(exportSnapshot())
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, "export_json", document)
}

// Rendering the same snapshot twice yields identical bytes, in both formats.
func TestExportDeterministic(t *testing.T) {
	first := RenderGEDCOM(exportSnapshot())
	second := RenderGEDCOM(exportSnapshot())
	assert.Equal(t, first, second)

	firstJSON, err := RenderJSON(exportSnapshot())
	require.NoError(t, err)
	secondJSON, err := RenderJSON(exportSnapshot())
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

// Both parents of a child and the spouse edge between them collapse into a
// single family unit.
func TestBuildFamilies(t *testing.T) {
	families := buildFamilies(exportSnapshot())
	require.Len(t, families, 1)
	assert.Equal(t, []int64{1, 2}, families[0].partners)
	assert.Equal(t, []int64{3, 4}, families[0].children)
}

// A child with a single recorded parent forms its own one-partner unit.
func TestBuildFamiliesSingleParent(t *testing.T) {
	snapshot := exportSnapshot()
	snapshot.People = append(snapshot.People, Person{ID: 5, GivenName: "Per", FamilyName: "Berg"})
	snapshot.People = append(snapshot.People, Person{ID: 6, GivenName: "Eva", FamilyName: "Berg"})
	snapshot.Edges = append(snapshot.Edges, Edge{ID: 6, Person1ID: 5, Person2ID: 6, Type: "parent"})

	families := buildFamilies(snapshot)
	require.Len(t, families, 2)
	assert.Equal(t, []int64{5}, families[1].partners)
	assert.Equal(t, []int64{6}, families[1].children)
}
