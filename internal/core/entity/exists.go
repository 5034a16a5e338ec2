package entity

import (
	"context"
	"fmt"

	"github.com/phamducminh/rootline/internal/platform/database/schema"
	"github.com/phamducminh/rootline/internal/platform/dberr"
	"github.com/phamducminh/rootline/internal/platform/postgres"
)

// ExistsLive reports whether the referenced record is live and owned by the
// account. Link targets are checked through this inside the link's own
// transaction, so a link can never be created against a tombstone.
func ExistsLive(ctx context.Context, q postgres.Queryer, accountID int64, ref Ref) (bool, error) {
	var table, idColumn, accountColumn, deletedColumn string
	switch ref.Kind {
	case KindPerson:
		table, idColumn = schema.CorePerson.Table, schema.CorePerson.ID
		accountColumn, deletedColumn = schema.CorePerson.AccountID, schema.CorePerson.DeletedAt
	case KindRelationship:
		table, idColumn = schema.CoreRelationship.Table, schema.CoreRelationship.ID
		accountColumn, deletedColumn = schema.CoreRelationship.AccountID, schema.CoreRelationship.DeletedAt
	case KindEvent:
		table, idColumn = schema.CoreEvent.Table, schema.CoreEvent.ID
		accountColumn, deletedColumn = schema.CoreEvent.AccountID, schema.CoreEvent.DeletedAt
	default:
		return false, nil
	}

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL)`,
		table, idColumn, accountColumn, deletedColumn)

	var exists bool
	if err := q.QueryRow(ctx, query, ref.ID, accountID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check_ref")
	}
	return exists, nil
}
