package revision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/core/entity"
)

func ts(day int) time.Time {
	return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC)
}

func personHistory() []Revision {
	return []Revision{
		{
			ID: 1, EntityType: entity.KindPerson, EntityID: 7, Action: ActionCreate,
			After:     Fields{"given_name": "Anna", "family_name": "Berg", "privacy": "private"},
			CreatedAt: ts(1),
		},
		{
			ID: 2, EntityType: entity.KindPerson, EntityID: 7, Action: ActionUpdate,
			Before:    Fields{"family_name": "Berg"},
			After:     Fields{"family_name": "Lindqvist"},
			CreatedAt: ts(3),
		},
		{
			ID: 3, EntityType: entity.KindPerson, EntityID: 7, Action: ActionUpdate,
			Before:    Fields{"bio": nil},
			After:     Fields{"bio": "emigrated 1902"},
			CreatedAt: ts(5),
		},
		{
			ID: 4, EntityType: entity.KindPerson, EntityID: 7, Action: ActionDelete,
			After:     Fields{"deleted_at": ts(8).Format(time.RFC3339)},
			CreatedAt: ts(8),
		},
	}
}

func TestReplayFull(t *testing.T) {
	state := Replay(personHistory(), nil)

	assert.True(t, state.Exists)
	assert.True(t, state.Deleted)
	assert.Equal(t, "Anna", state.Fields["given_name"])
	assert.Equal(t, "Lindqvist", state.Fields["family_name"])
	assert.Equal(t, "emigrated 1902", state.Fields["bio"])
}

func TestReplayPointInTime(t *testing.T) {
	at := ts(4) // after the rename, before the bio edit
	state := Replay(personHistory(), &at)

	require.True(t, state.Exists)
	assert.False(t, state.Deleted)
	assert.Equal(t, "Lindqvist", state.Fields["family_name"])
	assert.NotContains(t, state.Fields, "bio")
}

func TestReplayBeforeCreate(t *testing.T) {
	at := ts(1).Add(-time.Hour)
	state := Replay(personHistory(), &at)

	assert.False(t, state.Exists)
	assert.Nil(t, state.Fields)
}

func TestReplayAfterPurge(t *testing.T) {
	history := append(personHistory(), Revision{
		ID: 5, EntityType: entity.KindPerson, EntityID: 7, Action: ActionPurge, CreatedAt: ts(9),
	})

	state := Replay(history, nil)
	assert.False(t, state.Exists)

	// The ledger still answers for the time before the purge.
	at := ts(6)
	state = Replay(history, &at)
	assert.True(t, state.Exists)
	assert.Equal(t, "emigrated 1902", state.Fields["bio"])
}

// Commit order (ledger id) wins over insertion order of the slice and over
// equal timestamps.
func TestReplayOrdersByID(t *testing.T) {
	history := []Revision{
		{ID: 2, Action: ActionUpdate, After: Fields{"given_name": "Ann"}, CreatedAt: ts(2)},
		{ID: 1, Action: ActionCreate, After: Fields{"given_name": "Anna"}, CreatedAt: ts(2)},
	}

	state := Replay(history, nil)
	require.True(t, state.Exists)
	assert.Equal(t, "Ann", state.Fields["given_name"])
}

// Timestamps are transaction-start times, so a writer that began early but
// committed late yields a higher-id row with an earlier timestamp. The cutoff
// must skip late entries without stopping the scan.
func TestReplayCutoffSkipsWithoutStopping(t *testing.T) {
	history := []Revision{
		{ID: 1, Action: ActionCreate, After: Fields{"given_name": "Anna"}, CreatedAt: ts(1)},
		{ID: 2, Action: ActionUpdate, After: Fields{"privacy": "public"}, CreatedAt: ts(6)},
		{ID: 3, Action: ActionUpdate, After: Fields{"bio": "weaver"}, CreatedAt: ts(3)},
	}

	at := ts(4)
	state := Replay(history, &at)

	require.True(t, state.Exists)
	assert.NotContains(t, state.Fields, "privacy")
	assert.Equal(t, "weaver", state.Fields["bio"])
}

// Attachment entries are audit evidence only; they never disturb the owning
// record's replayed fields.
func TestReplayIgnoresAttachmentEntries(t *testing.T) {
	history := []Revision{
		{ID: 1, Action: ActionCreate, After: Fields{"title": "Parish register"}, CreatedAt: ts(1)},
		{ID: 2, Action: ActionLink, After: Fields{"entity_type": "person", "entity_id": int64(7)}, CreatedAt: ts(2)},
		{ID: 3, Action: ActionUnlink, Before: Fields{"entity_type": "person", "entity_id": int64(7)}, CreatedAt: ts(3)},
	}

	state := Replay(history, nil)

	require.True(t, state.Exists)
	assert.Equal(t, Fields{"title": "Parish register"}, state.Fields)
}

// Round-trip: applying Diff output through Replay reproduces the end state.
func TestReplayDiffRoundTrip(t *testing.T) {
	v1 := Fields{"given_name": "Karl", "family_name": "Holm", "privacy": "private"}
	v2 := Fields{"given_name": "Karl", "family_name": "Holm", "privacy": "public", "bio": "farmer"}
	v3 := Fields{"given_name": "Carl", "family_name": "Holm", "privacy": "public", "bio": "farmer"}

	before12, after12 := Diff(v1, v2)
	before23, after23 := Diff(v2, v3)

	history := []Revision{
		{ID: 1, Action: ActionCreate, After: v1, CreatedAt: ts(1)},
		{ID: 2, Action: ActionUpdate, Before: before12, After: after12, CreatedAt: ts(2)},
		{ID: 3, Action: ActionUpdate, Before: before23, After: after23, CreatedAt: ts(3)},
	}

	state := Replay(history, nil)
	require.True(t, state.Exists)
	assert.Equal(t, v3, state.Fields)
}
