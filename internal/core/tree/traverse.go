package tree

import (
	"sort"

	"github.com/phamducminh/rootline/internal/platform/apperr"
)

// Lineage is one person found by a walk, tagged with their generation
// distance from the root (1 = parent/child, 2 = grandparent/grandchild, ...).
type Lineage struct {
	Person     Person `json:"person"`
	Generation int    `json:"generation"`
}

// Ancestors walks parent edges upward from root. maxDepth <= 0 means
// unbounded. Results are ordered by generation, then birth date (undated
// last), then id, so the same graph always yields the same listing.
func Ancestors(snapshot *Snapshot, rootID int64, maxDepth int) ([]Lineage, error) {
	return walk(snapshot, rootID, maxDepth, snapshot.parentMap())
}

// Descendants walks parent edges downward from root, same contract as
// [Ancestors].
func Descendants(snapshot *Snapshot, rootID int64, maxDepth int) ([]Lineage, error) {
	return walk(snapshot, rootID, maxDepth, snapshot.childMap())
}

func walk(snapshot *Snapshot, rootID int64, maxDepth int, next map[int64][]int64) ([]Lineage, error) {
	index := snapshot.personIndex()
	if _, ok := index[rootID]; !ok {
		return nil, apperr.NotFound("Person")
	}

	visited := map[int64]bool{rootID: true}
	frontier := []int64{rootID}
	var result []Lineage

	for generation := 1; len(frontier) > 0; generation++ {
		if maxDepth > 0 && generation > maxDepth {
			break
		}

		nextFrontier := map[int64]bool{}
		for _, current := range frontier {
			for _, neighbor := range next[current] {
				// The acyclicity invariant makes the root unreachable from
				// itself; seeing it again means the stored graph is corrupt.
				if neighbor == rootID {
					return nil, apperr.Internal(errCorruptGraph)
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				nextFrontier[neighbor] = true
			}
		}

		var level []Lineage
		for id := range nextFrontier {
			if p, ok := index[id]; ok {
				level = append(level, Lineage{Person: p, Generation: generation})
			}
		}
		sort.Slice(level, func(i, j int) bool {
			return lessPerson(level[i].Person, level[j].Person)
		})
		result = append(result, level...)

		frontier = frontier[:0]
		for id := range nextFrontier {
			frontier = append(frontier, id)
		}
	}

	return result, nil
}

// lessPerson orders by birth date (undated last), then id.
func lessPerson(a, b Person) bool {
	switch {
	case a.BirthDate == nil && b.BirthDate == nil:
		return a.ID < b.ID
	case a.BirthDate == nil:
		return false
	case b.BirthDate == nil:
		return true
	case *a.BirthDate != *b.BirthDate:
		return *a.BirthDate < *b.BirthDate
	}
	return a.ID < b.ID
}

type corruptGraphError struct{}

func (corruptGraphError) Error() string { return "parent graph contains a cycle" }

var errCorruptGraph = corruptGraphError{}
