package tree

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamducminh/rootline/internal/platform/database/schema"
	"github.com/phamducminh/rootline/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LoadSnapshot reads the account's live people and edges with ORDER BY id.
// Dangling-soft edges are excluded by the live-endpoint joins.
func (repository *PostgresRepository) LoadSnapshot(ctx context.Context, accountID int64) (*Snapshot, error) {
	snapshot := &Snapshot{}

	peopleQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s ASC
	`,
		schema.CorePerson.ID, schema.CorePerson.GivenName, schema.CorePerson.FamilyName,
		schema.CorePerson.Gender, schema.CorePerson.BirthDate, schema.CorePerson.DeathDate,
		schema.CorePerson.BirthPlace, schema.CorePerson.DeathPlace,
		schema.CorePerson.Table, schema.CorePerson.AccountID, schema.CorePerson.DeletedAt,
		schema.CorePerson.ID,
	)

	rows, err := repository.db.Query(ctx, peopleQuery, accountID)
	if err != nil {
		return nil, dberr.Wrap(err, "load_snapshot_people")
	}
	defer rows.Close()

	for rows.Next() {
		var p Person
		if err := rows.Scan(&p.ID, &p.GivenName, &p.FamilyName, &p.Gender,
			&p.BirthDate, &p.DeathDate, &p.BirthPlace, &p.DeathPlace); err != nil {
			return nil, dberr.Wrap(err, "scan_snapshot_person")
		}
		snapshot.People = append(snapshot.People, p)
	}
	rows.Close()

	edgeQuery := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, r.%s, r.%s, r.%s
		FROM %s r
		JOIN %s p1 ON p1.%s = r.%s AND p1.%s IS NULL
		JOIN %s p2 ON p2.%s = r.%s AND p2.%s IS NULL
		WHERE r.%s = $1 AND r.%s IS NULL
		ORDER BY r.%s ASC
	`,
		schema.CoreRelationship.ID, schema.CoreRelationship.Person1ID, schema.CoreRelationship.Person2ID,
		schema.CoreRelationship.RelType, schema.CoreRelationship.StartDate, schema.CoreRelationship.EndDate,
		schema.CoreRelationship.Table,
		schema.CorePerson.Table, schema.CorePerson.ID, schema.CoreRelationship.Person1ID, schema.CorePerson.DeletedAt,
		schema.CorePerson.Table, schema.CorePerson.ID, schema.CoreRelationship.Person2ID, schema.CorePerson.DeletedAt,
		schema.CoreRelationship.AccountID, schema.CoreRelationship.DeletedAt,
		schema.CoreRelationship.ID,
	)

	edgeRows, err := repository.db.Query(ctx, edgeQuery, accountID)
	if err != nil {
		return nil, dberr.Wrap(err, "load_snapshot_edges")
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge Edge
		if err := edgeRows.Scan(&edge.ID, &edge.Person1ID, &edge.Person2ID,
			&edge.Type, &edge.StartDate, &edge.EndDate); err != nil {
			return nil, dberr.Wrap(err, "scan_snapshot_edge")
		}
		snapshot.Edges = append(snapshot.Edges, edge)
	}

	return snapshot, nil
}
