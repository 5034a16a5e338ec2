package relationship

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/pkg/pointer"
)

// fakePerson is the minimal endpoint state the invariant checks look at.
type fakePerson struct {
	accountID int64
	deleted   bool
}

// fakeRepo runs the same invariant functions as the Postgres store against
// in-memory state.
type fakeRepo struct {
	people map[int64]fakePerson
	edges  map[int64]*Relationship
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{people: map[int64]fakePerson{}, edges: map[int64]*Relationship{}}
}

func (r *fakeRepo) addPerson(id, accountID int64) {
	r.people[id] = fakePerson{accountID: accountID}
}

func (r *fakeRepo) tombstone(id int64) {
	p := r.people[id]
	p.deleted = true
	r.people[id] = p
}

func (r *fakeRepo) liveEdges(accountID int64) []*Relationship {
	var out []*Relationship
	for _, edge := range r.edges {
		if edge.AccountID != accountID || edge.DeletedAt != nil {
			continue
		}
		if r.people[edge.Person1ID].deleted || r.people[edge.Person2ID].deleted {
			continue // dangling-soft
		}
		out = append(out, edge)
	}
	return out
}

func (r *fakeRepo) ListRelationships(_ context.Context, accountID int64, f Filter, _, _ int) ([]*Relationship, int, error) {
	var out []*Relationship
	for _, edge := range r.liveEdges(accountID) {
		if f.PersonID > 0 && edge.Person1ID != f.PersonID && edge.Person2ID != f.PersonID {
			continue
		}
		if f.Type != "" && edge.Type != f.Type {
			continue
		}
		out = append(out, edge)
	}
	return out, len(out), nil
}

func (r *fakeRepo) GetRelationship(_ context.Context, accountID, id int64) (*Relationship, error) {
	for _, edge := range r.liveEdges(accountID) {
		if edge.ID == id {
			clone := *edge
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Relationship")
}

func (r *fakeRepo) CreateRelationship(_ context.Context, rel *Relationship, _ int64) error {
	for _, personID := range []int64{rel.Person1ID, rel.Person2ID} {
		endpoint, ok := r.people[personID]
		if !ok || endpoint.deleted {
			return apperr.NotFound("Person")
		}
		if endpoint.accountID != rel.AccountID {
			return apperr.InvalidRelationship("Both people must belong to the same account")
		}
	}

	rel.Person1ID, rel.Person2ID = Canonicalize(rel.Type, rel.Person1ID, rel.Person2ID)

	if dup := FindDuplicate(r.liveEdges(rel.AccountID), rel); dup != nil {
		return apperr.DuplicateRelationship("An identical relationship already covers this period")
	}

	if rel.Type == TypeParent {
		parents := map[int64][]int64{}
		for _, edge := range r.liveEdges(rel.AccountID) {
			if edge.Type == TypeParent {
				parents[edge.Person2ID] = append(parents[edge.Person2ID], edge.Person1ID)
			}
		}
		if WouldCreateCycle(parents, rel.Person1ID, rel.Person2ID) {
			return apperr.CycleDetected("Edge would make a person their own ancestor")
		}
	}

	r.nextID++
	rel.ID = r.nextID
	clone := *rel
	r.edges[rel.ID] = &clone
	return nil
}

func (r *fakeRepo) UpdateRelationship(_ context.Context, accountID, id int64, patch Patch, _ int64) (*Relationship, error) {
	edge, ok := r.edges[id]
	if !ok || edge.AccountID != accountID {
		return nil, apperr.NotFound("Relationship")
	}
	if edge.DeletedAt != nil {
		return nil, apperr.Conflict("Relationship was deleted by a concurrent request")
	}
	patch.Apply(edge)
	if dup := FindDuplicate(r.liveEdges(accountID), edge); dup != nil {
		return nil, apperr.DuplicateRelationship("An identical relationship already covers this period")
	}
	clone := *edge
	return &clone, nil
}

func (r *fakeRepo) SoftDeleteRelationship(_ context.Context, accountID, id, _ int64) error {
	edge, ok := r.edges[id]
	if !ok {
		return apperr.NotFound("Relationship")
	}
	if edge.AccountID != accountID {
		return apperr.Forbidden("Relationship belongs to another account")
	}
	now := time.Now()
	edge.DeletedAt = &now
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestCreateParentThenReverseCycles(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)

	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeParent,
	}))

	err := service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 2, Person2ID: 1, Type: TypeParent,
	})
	assert.True(t, apperr.IsCode(err, "CYCLE_DETECTED"))
}

func TestCreateGrandparentCycle(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	for id := int64(1); id <= 3; id++ {
		repo.addPerson(id, 10)
	}

	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{Person1ID: 1, Person2ID: 2, Type: TypeParent}))
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{Person1ID: 2, Person2ID: 3, Type: TypeParent}))

	err := service.CreateRelationship(ctx, 10, 10, &Relationship{Person1ID: 3, Person2ID: 1, Type: TypeParent})
	assert.True(t, apperr.IsCode(err, "CYCLE_DETECTED"))
}

func TestCreateSelfLoopRejected(t *testing.T) {
	service, repo := newTestService()
	repo.addPerson(1, 10)

	err := service.CreateRelationship(context.Background(), 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 1, Type: TypeParent,
	})
	assert.True(t, apperr.IsCode(err, "INVALID_RELATIONSHIP"))
	assert.Empty(t, repo.edges, "nothing may be written")
}

func TestCreateSpouseCanonicalOrientation(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(3, 10)
	repo.addPerson(9, 10)

	edge := &Relationship{Person1ID: 9, Person2ID: 3, Type: TypeSpouse, StartDate: pointer.To("1900-06-01")}
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, edge))
	assert.Equal(t, int64(3), edge.Person1ID)
	assert.Equal(t, int64(9), edge.Person2ID)

	// The mirrored insert is the same canonical edge: duplicate.
	err := service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 3, Person2ID: 9, Type: TypeSpouse,
	})
	assert.True(t, apperr.IsCode(err, "DUPLICATE_RELATIONSHIP"))
}

func TestCreateDuplicateDisjointIntervalsAllowed(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)

	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSpouse,
		StartDate: pointer.To("1900-01-01"), EndDate: pointer.To("1910-01-01"),
	}))

	// Divorce and remarriage: same pair, later interval.
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSpouse,
		StartDate: pointer.To("1915-01-01"),
	}))
}

func TestCreateWithTombstonedEndpoint(t *testing.T) {
	service, repo := newTestService()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)
	repo.tombstone(2)

	err := service.CreateRelationship(context.Background(), 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSibling,
	})
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

func TestCreateCrossAccountEndpoint(t *testing.T) {
	service, repo := newTestService()
	repo.addPerson(1, 10)
	repo.addPerson(2, 11) // other tenant

	err := service.CreateRelationship(context.Background(), 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSpouse,
	})
	assert.True(t, apperr.IsCode(err, "INVALID_RELATIONSHIP"))
}

func TestSoftDeletedEndpointHidesEdge(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)

	edge := &Relationship{Person1ID: 1, Person2ID: 2, Type: TypeParent}
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, edge))

	repo.tombstone(2)

	_, err := service.GetRelationship(ctx, 10, edge.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	edges, total, err := service.ListRelationships(ctx, 10, Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, edges)
}

func TestDeletedParentEdgeReopensGraph(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)

	edge := &Relationship{Person1ID: 1, Person2ID: 2, Type: TypeParent}
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, edge))
	require.NoError(t, service.SoftDeleteRelationship(ctx, 10, edge.ID, 10))

	// With the old edge gone, the reverse direction is acyclic again.
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 2, Person2ID: 1, Type: TypeParent,
	}))
}

func TestUpdateIntervalCollision(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	repo.addPerson(1, 10)
	repo.addPerson(2, 10)

	require.NoError(t, service.CreateRelationship(ctx, 10, 10, &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSpouse,
		StartDate: pointer.To("1900-01-01"), EndDate: pointer.To("1910-01-01"),
	}))
	second := &Relationship{
		Person1ID: 1, Person2ID: 2, Type: TypeSpouse,
		StartDate: pointer.To("1920-01-01"), EndDate: pointer.To("1930-01-01"),
	}
	require.NoError(t, service.CreateRelationship(ctx, 10, 10, second))

	// Widening the second interval back into the first must collide.
	_, err := service.UpdateRelationship(ctx, 10, second.ID, Patch{
		StartDate: pointer.To("1905-01-01"),
	}, 10)
	assert.True(t, apperr.IsCode(err, "DUPLICATE_RELATIONSHIP"))
}
