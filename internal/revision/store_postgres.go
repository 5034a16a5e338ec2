package revision

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/database/schema"
	"github.com/phamducminh/rootline/internal/platform/dberr"
	"github.com/phamducminh/rootline/internal/platform/postgres"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts one ledger row on the caller's transaction. The ledger has
// no UPDATE or DELETE path anywhere in the codebase.
func (repository *PostgresRepository) Append(ctx context.Context, q postgres.Queryer, rev *Revision) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING %s, %s
	`,
		schema.SystemRevision.Table, schema.SystemRevision.AccountID, schema.SystemRevision.EntityType,
		schema.SystemRevision.EntityID, schema.SystemRevision.AuthorID, schema.SystemRevision.Action,
		schema.SystemRevision.Before, schema.SystemRevision.After, schema.SystemRevision.CreatedAt,
		schema.SystemRevision.ID, schema.SystemRevision.CreatedAt,
	)

	err := q.QueryRow(ctx, query,
		rev.AccountID, rev.EntityType, rev.EntityID, rev.AuthorID, rev.Action, rev.Before, rev.After,
	).Scan(&rev.ID, &rev.CreatedAt)
	return dberr.Wrap(err, "append_revision")
}

func (repository *PostgresRepository) ListRevisions(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Revision, int, error) {
	base := fmt.Sprintf(` FROM %s WHERE %s = $1`, schema.SystemRevision.Table, schema.SystemRevision.AccountID)
	args := []any{accountID}

	if f.EntityType != "" {
		base += fmt.Sprintf(` AND %s = $%s`, schema.SystemRevision.EntityType, itos(len(args)+1))
		args = append(args, f.EntityType)
	}
	if f.EntityID > 0 {
		base += fmt.Sprintf(` AND %s = $%s`, schema.SystemRevision.EntityID, itos(len(args)+1))
		args = append(args, f.EntityID)
	}
	if f.From != nil {
		base += fmt.Sprintf(` AND %s >= $%s`, schema.SystemRevision.CreatedAt, itos(len(args)+1))
		args = append(args, *f.From)
	}
	if f.To != nil {
		base += fmt.Sprintf(` AND %s <= $%s`, schema.SystemRevision.CreatedAt, itos(len(args)+1))
		args = append(args, *f.To)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_revisions")
	}

	cols := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s`,
		schema.SystemRevision.ID, schema.SystemRevision.AccountID, schema.SystemRevision.EntityType,
		schema.SystemRevision.EntityID, schema.SystemRevision.AuthorID, schema.SystemRevision.Action,
		schema.SystemRevision.Before, schema.SystemRevision.After, schema.SystemRevision.CreatedAt,
	)
	query := cols + base + fmt.Sprintf(` ORDER BY %s ASC LIMIT $%s OFFSET $%s`,
		schema.SystemRevision.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_revisions")
	}
	defer rows.Close()

	var revisions []*Revision
	for rows.Next() {
		rev := &Revision{}
		if err := rows.Scan(
			&rev.ID, &rev.AccountID, &rev.EntityType, &rev.EntityID, &rev.AuthorID,
			&rev.Action, &rev.Before, &rev.After, &rev.CreatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_revision")
		}
		revisions = append(revisions, rev)
	}

	return revisions, total, nil
}

// ListForEntity loads every ledger row for one record in commit order,
// the input shape [Replay] expects.
func (repository *PostgresRepository) ListForEntity(ctx context.Context, accountID int64, kind entity.Kind, entityID int64) ([]Revision, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = $3
		ORDER BY %s ASC
	`,
		schema.SystemRevision.ID, schema.SystemRevision.AccountID, schema.SystemRevision.EntityType,
		schema.SystemRevision.EntityID, schema.SystemRevision.AuthorID, schema.SystemRevision.Action,
		schema.SystemRevision.Before, schema.SystemRevision.After, schema.SystemRevision.CreatedAt,
		schema.SystemRevision.Table,
		schema.SystemRevision.AccountID, schema.SystemRevision.EntityType, schema.SystemRevision.EntityID,
		schema.SystemRevision.ID,
	)

	rows, err := repository.db.Query(ctx, query, accountID, kind, entityID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_entity_revisions")
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		rev := Revision{}
		if err := rows.Scan(
			&rev.ID, &rev.AccountID, &rev.EntityType, &rev.EntityID, &rev.AuthorID,
			&rev.Action, &rev.Before, &rev.After, &rev.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_revision")
		}
		revisions = append(revisions, rev)
	}

	return revisions, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
