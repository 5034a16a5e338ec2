package person

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/postgres"
	"github.com/phamducminh/rootline/internal/revision"
	"github.com/phamducminh/rootline/pkg/pointer"
)

// fakeLedger is an in-memory revision.Repository. Append ignores the Queryer:
// there is no real transaction in these tests.
type fakeLedger struct {
	rows   []revision.Revision
	nextID int64
}

func (l *fakeLedger) Append(_ context.Context, _ postgres.Queryer, rev *revision.Revision) error {
	l.nextID++
	rev.ID = l.nextID
	rev.CreatedAt = time.Now().UTC()
	l.rows = append(l.rows, *rev)
	return nil
}

func (l *fakeLedger) ListRevisions(_ context.Context, accountID int64, f revision.Filter, limit, offset int) ([]*revision.Revision, int, error) {
	var out []*revision.Revision
	for i := range l.rows {
		rev := l.rows[i]
		if rev.AccountID != accountID {
			continue
		}
		if f.EntityType != "" && rev.EntityType != f.EntityType {
			continue
		}
		if f.EntityID > 0 && rev.EntityID != f.EntityID {
			continue
		}
		out = append(out, &rev)
	}
	return out, len(out), nil
}

func (l *fakeLedger) ListForEntity(_ context.Context, accountID int64, kind entity.Kind, entityID int64) ([]revision.Revision, error) {
	var out []revision.Revision
	for _, rev := range l.rows {
		if rev.AccountID == accountID && rev.EntityType == kind && rev.EntityID == entityID {
			out = append(out, rev)
		}
	}
	return out, nil
}

// fakeRepo mirrors the Postgres store's mutation flow against a map.
type fakeRepo struct {
	people map[int64]*Person
	ledger *fakeLedger
	nextID int64
}

func newFakeRepo(ledger *fakeLedger) *fakeRepo {
	return &fakeRepo{people: map[int64]*Person{}, ledger: ledger}
}

func (r *fakeRepo) ListPeople(_ context.Context, accountID int64, _ Filter, _, _ int) ([]*Person, int, error) {
	var out []*Person
	for _, p := range r.people {
		if p.AccountID == accountID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) GetPerson(_ context.Context, accountID, id int64, includeDeleted bool) (*Person, error) {
	p, ok := r.people[id]
	if !ok || p.AccountID != accountID || (p.DeletedAt != nil && !includeDeleted) {
		return nil, apperr.NotFound("Person")
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepo) CreatePerson(ctx context.Context, p *Person, authorID int64) error {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	r.people[p.ID] = &clone
	return r.ledger.Append(ctx, nil, &revision.Revision{
		AccountID: p.AccountID, EntityType: entity.KindPerson, EntityID: p.ID,
		AuthorID: authorID, Action: revision.ActionCreate, After: p.Snapshot(),
	})
}

func (r *fakeRepo) UpdatePerson(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Person, error) {
	p, ok := r.people[id]
	if !ok || p.AccountID != accountID {
		return nil, apperr.NotFound("Person")
	}
	if p.DeletedAt != nil {
		return nil, apperr.Conflict("Person was deleted by a concurrent request")
	}

	before := p.Snapshot()
	patch.Apply(p)
	changedBefore, changedAfter := revision.Diff(before, p.Snapshot())
	if changedBefore == nil {
		clone := *p
		return &clone, nil
	}

	p.UpdatedAt = time.Now().UTC()
	if err := r.ledger.Append(ctx, nil, &revision.Revision{
		AccountID: accountID, EntityType: entity.KindPerson, EntityID: id,
		AuthorID: authorID, Action: revision.ActionUpdate,
		Before: changedBefore, After: changedAfter,
	}); err != nil {
		return nil, err
	}
	clone := *p
	return &clone, nil
}

func (r *fakeRepo) SoftDeletePerson(ctx context.Context, accountID, id, authorID int64) error {
	p, ok := r.people[id]
	if !ok {
		return apperr.NotFound("Person")
	}
	if p.AccountID != accountID {
		return apperr.Forbidden("Person belongs to another account")
	}
	if p.DeletedAt != nil {
		return apperr.NotFound("Person")
	}
	now := time.Now().UTC()
	p.DeletedAt = &now
	return r.ledger.Append(ctx, nil, &revision.Revision{
		AccountID: accountID, EntityType: entity.KindPerson, EntityID: id,
		AuthorID: authorID, Action: revision.ActionDelete,
		After: revision.Fields{"deleted_at": now.Format(time.RFC3339)},
	})
}

func (r *fakeRepo) HardPurgePerson(ctx context.Context, accountID, id, authorID int64) error {
	p, ok := r.people[id]
	if !ok {
		return apperr.NotFound("Person")
	}
	if p.AccountID != accountID {
		return apperr.Forbidden("Person belongs to another account")
	}
	delete(r.people, id)
	return r.ledger.Append(ctx, nil, &revision.Revision{
		AccountID: accountID, EntityType: entity.KindPerson, EntityID: id,
		AuthorID: authorID, Action: revision.ActionPurge,
	})
}

func newTestService() (*Service, *fakeRepo, *fakeLedger) {
	ledger := &fakeLedger{}
	repo := newFakeRepo(ledger)
	return NewService(repo, ledger, slog.New(slog.NewTextHandler(io.Discard, nil))), repo, ledger
}

func TestCreatePersonDefaultsPrivacy(t *testing.T) {
	service, _, ledger := newTestService()

	p := &Person{GivenName: "Anna", FamilyName: "Berg"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))

	assert.Equal(t, PrivacyPrivate, p.Privacy)
	require.Len(t, ledger.rows, 1)
	assert.Equal(t, revision.ActionCreate, ledger.rows[0].Action)
	assert.Equal(t, "Anna", ledger.rows[0].After[FieldGivenName])
}

func TestCreatePersonValidation(t *testing.T) {
	service, _, _ := newTestService()

	tests := []struct {
		name  string
		input *Person
	}{
		{"no names", &Person{}},
		{"bad privacy", &Person{GivenName: "Anna", Privacy: "secret"}},
		{"bad birth date", &Person{GivenName: "Anna", BirthDate: pointer.To("18-01-01")}},
		{"death before birth", &Person{
			GivenName: "Anna",
			BirthDate: pointer.To("1900-05-01"),
			DeathDate: pointer.To("1899-01-01"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CreatePerson(context.Background(), 1, 1, tt.input)
			assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestUpdatePersonAppendsDiffOnly(t *testing.T) {
	service, _, ledger := newTestService()

	p := &Person{GivenName: "Anna", FamilyName: "Berg"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))

	updated, err := service.UpdatePerson(context.Background(), 1, p.ID, Patch{
		FamilyName: pointer.To("Lindqvist"),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Lindqvist", updated.FamilyName)

	require.Len(t, ledger.rows, 2)
	rev := ledger.rows[1]
	assert.Equal(t, revision.ActionUpdate, rev.Action)
	assert.Equal(t, revision.Fields{FieldFamilyName: "Berg"}, rev.Before)
	assert.Equal(t, revision.Fields{FieldFamilyName: "Lindqvist"}, rev.After)
}

func TestUpdatePersonNoChangeAppendsNothing(t *testing.T) {
	service, _, ledger := newTestService()

	p := &Person{GivenName: "Anna"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))

	_, err := service.UpdatePerson(context.Background(), 1, p.ID, Patch{
		GivenName: pointer.To("Anna"),
	}, 1)
	require.NoError(t, err)
	assert.Len(t, ledger.rows, 1)
}

func TestUpdateTombstonedPersonConflicts(t *testing.T) {
	service, _, _ := newTestService()

	p := &Person{GivenName: "Anna"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))
	require.NoError(t, service.SoftDeletePerson(context.Background(), 1, p.ID, 1))

	_, err := service.UpdatePerson(context.Background(), 1, p.ID, Patch{
		GivenName: pointer.To("Ann"),
	}, 1)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

func TestSoftDeleteCrossAccountForbidden(t *testing.T) {
	service, _, _ := newTestService()

	p := &Person{GivenName: "Anna"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))

	err := service.SoftDeletePerson(context.Background(), 2, p.ID, 2)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// Reads from the other account never reveal the record at all.
	_, err = service.GetPerson(context.Background(), 2, p.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

func TestSoftDeleteHidesFromLiveReads(t *testing.T) {
	service, _, _ := newTestService()

	p := &Person{GivenName: "Anna"}
	require.NoError(t, service.CreatePerson(context.Background(), 1, 1, p))
	require.NoError(t, service.SoftDeletePerson(context.Background(), 1, p.ID, 1))

	_, err := service.GetPerson(context.Background(), 1, p.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	// History still answers.
	history, err := service.History(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// The ledger must reconstruct the live record exactly: replaying every
// revision yields the same fields as the stored row.
func TestHistoryReplaysToCurrentState(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	p := &Person{GivenName: "Karl", FamilyName: "Holm", BirthDate: pointer.To("1871-02-14")}
	require.NoError(t, service.CreatePerson(ctx, 1, 1, p))

	_, err := service.UpdatePerson(ctx, 1, p.ID, Patch{Bio: pointer.To("farmer")}, 1)
	require.NoError(t, err)
	_, err = service.UpdatePerson(ctx, 1, p.ID, Patch{
		GivenName: pointer.To("Carl"),
		DeathDate: pointer.To("1940-11-30"),
	}, 1)
	require.NoError(t, err)

	history, err := service.History(ctx, 1, p.ID)
	require.NoError(t, err)

	state := revision.Replay(history, nil)
	require.True(t, state.Exists)

	current, err := repo.GetPerson(ctx, 1, p.ID, false)
	require.NoError(t, err)
	for field, value := range current.Snapshot() {
		if value == nil {
			assert.NotContains(t, state.Fields, field)
			continue
		}
		assert.Equal(t, value, state.Fields[field], field)
	}
}

func TestHardPurgeKeepsLedger(t *testing.T) {
	service, _, ledger := newTestService()
	ctx := context.Background()

	p := &Person{GivenName: "Anna"}
	require.NoError(t, service.CreatePerson(ctx, 1, 1, p))
	require.NoError(t, service.HardPurgePerson(ctx, 1, p.ID, 1))

	_, err := service.GetPerson(ctx, 1, p.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	require.Len(t, ledger.rows, 2)
	assert.Equal(t, revision.ActionPurge, ledger.rows[1].Action)

	state := revision.Replay(ledger.rows, nil)
	assert.False(t, state.Exists)
}
