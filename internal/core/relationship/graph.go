package relationship

// Graph invariants as pure functions. The Postgres store evaluates them
// inside the mutation's transaction (under the account's advisory lock);
// test fakes evaluate the identical logic in memory, so the two can never
// drift apart.

// Canonicalize normalizes a symmetric edge to its stored orientation,
// smaller person id first. Directed edges pass through unchanged.
func Canonicalize(t Type, person1, person2 int64) (int64, int64) {
	if t.Symmetric() && person2 < person1 {
		return person2, person1
	}
	return person1, person2
}

// IntervalsOverlap reports whether two validity intervals share at least one
// day. Bounds are ISO YYYY-MM-DD strings, which compare correctly as bytes;
// a nil bound is open-ended, so two unbounded intervals always overlap.
func IntervalsOverlap(start1, end1, start2, end2 *string) bool {
	// interval 1 ends before interval 2 starts
	if end1 != nil && start2 != nil && *end1 < *start2 {
		return false
	}
	// interval 2 ends before interval 1 starts
	if end2 != nil && start1 != nil && *end2 < *start1 {
		return false
	}
	return true
}

// WouldCreateCycle reports whether inserting the parent edge
// (parentID parent-of childID) closes a cycle in the parent subgraph.
//
// parents maps each person to their existing parents. The new edge cycles
// exactly when childID is already an ancestor of parentID, found by walking
// the ancestor closure of parentID.
func WouldCreateCycle(parents map[int64][]int64, parentID, childID int64) bool {
	if parentID == childID {
		return true
	}

	seen := map[int64]bool{parentID: true}
	stack := []int64{parentID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, ancestor := range parents[current] {
			if ancestor == childID {
				return true
			}
			if !seen[ancestor] {
				seen[ancestor] = true
				stack = append(stack, ancestor)
			}
		}
	}
	return false
}

// FindDuplicate returns the first existing edge with the same canonical
// (person1, person2, type) triple and an overlapping validity interval,
// or nil. candidate must already be canonicalized.
func FindDuplicate(existing []*Relationship, candidate *Relationship) *Relationship {
	for _, edge := range existing {
		if edge.ID == candidate.ID {
			continue
		}
		if edge.Person1ID != candidate.Person1ID || edge.Person2ID != candidate.Person2ID || edge.Type != candidate.Type {
			continue
		}
		if IntervalsOverlap(edge.StartDate, edge.EndDate, candidate.StartDate, candidate.EndDate) {
			return edge
		}
	}
	return nil
}
