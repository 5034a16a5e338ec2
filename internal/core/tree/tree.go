// Package tree walks and exports an account's genealogy graph.
//
// All operations run against an immutable Snapshot loaded in one query pass
// with deterministic ordering, so every rendering derived from the same
// snapshot agrees with every other.
package tree

// Person is the projection of a live person used in walks and exports.
type Person struct {
	ID         int64   `json:"id"`
	GivenName  string  `json:"given_name"`
	FamilyName string  `json:"family_name"`
	Gender     *string `json:"gender,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	DeathDate  *string `json:"death_date,omitempty"`
	BirthPlace *string `json:"birth_place,omitempty"`
	DeathPlace *string `json:"death_place,omitempty"`
}

// Edge is the projection of a live relationship.
type Edge struct {
	ID        int64   `json:"id"`
	Person1ID int64   `json:"person1_id"`
	Person2ID int64   `json:"person2_id"`
	Type      string  `json:"type"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// Snapshot is one account's live graph, people and edges in id order.
// Tombstoned people, tombstoned edges, and dangling-soft edges are absent.
type Snapshot struct {
	People []Person `json:"people"`
	Edges  []Edge   `json:"relationships"`
}

// personIndex maps ids to snapshot people.
func (s *Snapshot) personIndex() map[int64]Person {
	index := make(map[int64]Person, len(s.People))
	for _, p := range s.People {
		index[p.ID] = p
	}
	return index
}

// parentMap builds child → parents adjacency from parent edges.
func (s *Snapshot) parentMap() map[int64][]int64 {
	parents := map[int64][]int64{}
	for _, edge := range s.Edges {
		if edge.Type == "parent" {
			parents[edge.Person2ID] = append(parents[edge.Person2ID], edge.Person1ID)
		}
	}
	return parents
}

// childMap builds parent → children adjacency from parent edges.
func (s *Snapshot) childMap() map[int64][]int64 {
	children := map[int64][]int64{}
	for _, edge := range s.Edges {
		if edge.Type == "parent" {
			children[edge.Person1ID] = append(children[edge.Person1ID], edge.Person2ID)
		}
	}
	return children
}
