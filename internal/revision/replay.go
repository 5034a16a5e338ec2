package revision

import (
	"sort"
	"time"
)

// State is the reconstructed shape of one record at a point in time.
type State struct {
	// Exists is false before the record's create revision and after a purge.
	Exists bool `json:"exists"`
	// Deleted is true while the record is tombstoned (soft-deleted).
	Deleted bool `json:"deleted"`
	// Fields holds the record's field values as of the replay point.
	Fields Fields `json:"fields"`
}

// Replay folds a record's revisions into its state at time at.
//
// Revisions are applied in commit order (ledger id ascending); entries
// committed after at are ignored. Folding every revision with at == nil
// yields the record's current state, which matches the live row exactly --
// that equivalence is the ledger's core guarantee.
func Replay(revisions []Revision, at *time.Time) State {
	ordered := make([]Revision, len(revisions))
	copy(ordered, revisions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	state := State{Fields: Fields{}}
	for _, rev := range ordered {
		// Timestamps are transaction-start times and need not be monotonic
		// in commit order; skip late entries instead of stopping the scan.
		if at != nil && rev.CreatedAt.After(*at) {
			continue
		}
		apply(&state, rev)
	}

	if !state.Exists {
		state.Fields = nil
	}
	return state
}

func apply(state *State, rev Revision) {
	switch rev.Action {
	case ActionCreate:
		state.Exists = true
		state.Deleted = false
		state.Fields = Fields{}
		merge(state.Fields, rev.After)
	case ActionUpdate:
		merge(state.Fields, rev.After)
	case ActionDelete:
		state.Deleted = true
		merge(state.Fields, rev.After)
	case ActionPurge:
		state.Exists = false
		state.Deleted = false
		state.Fields = Fields{}
	case ActionLink, ActionUnlink:
		// Attachment history; the record's own fields are untouched.
	}
}

func merge(into Fields, from Fields) {
	for key, value := range from {
		if value == nil {
			delete(into, key)
			continue
		}
		into[key] = value
	}
}
