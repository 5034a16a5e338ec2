package revision

import (
	"context"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/postgres"
)

// Repository is the ledger's storage contract.
//
// Append takes a [postgres.Queryer] rather than binding to the pool so the
// ledger row commits atomically with the entity mutation: stores pass their
// open pgx.Tx, tests pass a fake.
type Repository interface {
	Append(ctx context.Context, q postgres.Queryer, rev *Revision) error
	ListRevisions(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Revision, int, error)
	ListForEntity(ctx context.Context, accountID int64, kind entity.Kind, entityID int64) ([]Revision, error)
}
