package relationship

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/database/schema"
	"github.com/phamducminh/rootline/internal/platform/dberr"
	"github.com/phamducminh/rootline/internal/platform/postgres"
	"github.com/phamducminh/rootline/internal/platform/validate"
	"github.com/phamducminh/rootline/internal/revision"
)

type PostgresRepository struct {
	db        *pgxpool.Pool
	revisions revision.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, revisions revision.Repository) *PostgresRepository {
	return &PostgresRepository{db: db, revisions: revisions}
}

func relationshipColumns(alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	columns := []string{
		schema.CoreRelationship.ID, schema.CoreRelationship.AccountID, schema.CoreRelationship.Person1ID,
		schema.CoreRelationship.Person2ID, schema.CoreRelationship.RelType, schema.CoreRelationship.StartDate,
		schema.CoreRelationship.EndDate, schema.CoreRelationship.Detail,
		schema.CoreRelationship.CreatedAt, schema.CoreRelationship.UpdatedAt,
	}
	for i := range columns {
		columns[i] = prefix + columns[i]
	}
	return strings.Join(columns, ", ")
}

func scanRelationship(row pgx.Row) (*Relationship, error) {
	r := &Relationship{}
	err := row.Scan(
		&r.ID, &r.AccountID, &r.Person1ID, &r.Person2ID, &r.Type,
		&r.StartDate, &r.EndDate, &r.Detail, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// liveEndpointJoin restricts rows to edges whose endpoints are both live.
// Edges referencing tombstoned people are dangling-soft: they stay in the
// table for history views but vanish from live queries.
func liveEndpointJoin() string {
	return fmt.Sprintf(
		` JOIN %[1]s p1 ON p1.%[2]s = r.%[3]s AND p1.%[4]s IS NULL
		  JOIN %[1]s p2 ON p2.%[2]s = r.%[5]s AND p2.%[4]s IS NULL`,
		schema.CorePerson.Table, schema.CorePerson.ID, schema.CoreRelationship.Person1ID,
		schema.CorePerson.DeletedAt, schema.CoreRelationship.Person2ID,
	)
}

func (repository *PostgresRepository) ListRelationships(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Relationship, int, error) {
	base := fmt.Sprintf(` FROM %s r`, schema.CoreRelationship.Table) + liveEndpointJoin() +
		fmt.Sprintf(` WHERE r.%s = $1 AND r.%s IS NULL`,
			schema.CoreRelationship.AccountID, schema.CoreRelationship.DeletedAt)
	args := []any{accountID}

	if f.PersonID > 0 {
		base += fmt.Sprintf(` AND (r.%s = $%s OR r.%s = $%s)`,
			schema.CoreRelationship.Person1ID, itos(len(args)+1),
			schema.CoreRelationship.Person2ID, itos(len(args)+1))
		args = append(args, f.PersonID)
	}
	if f.Type != "" {
		base += fmt.Sprintf(` AND r.%s = $%s`, schema.CoreRelationship.RelType, itos(len(args)+1))
		args = append(args, f.Type)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_relationships")
	}

	query := `SELECT ` + relationshipColumns("r") + base +
		fmt.Sprintf(` ORDER BY r.%s ASC LIMIT $%s OFFSET $%s`,
			schema.CoreRelationship.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_relationships")
	}
	defer rows.Close()

	var relationships []*Relationship
	for rows.Next() {
		r, err := scanRelationship(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_relationship")
		}
		relationships = append(relationships, r)
	}

	return relationships, total, nil
}

func (repository *PostgresRepository) GetRelationship(ctx context.Context, accountID, id int64) (*Relationship, error) {
	query := `SELECT ` + relationshipColumns("r") +
		fmt.Sprintf(` FROM %s r`, schema.CoreRelationship.Table) + liveEndpointJoin() +
		fmt.Sprintf(` WHERE r.%s = $1 AND r.%s = $2 AND r.%s IS NULL`,
			schema.CoreRelationship.ID, schema.CoreRelationship.AccountID, schema.CoreRelationship.DeletedAt)

	r, err := scanRelationship(repository.db.QueryRow(ctx, query, id, accountID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_relationship")
	}
	return r, nil
}

// CreateRelationship runs the full invariant check and the insert as one
// serialized unit: the account's advisory lock is held from before the
// graph reads until commit, so two racing inserts cannot both pass.
func (repository *PostgresRepository) CreateRelationship(ctx context.Context, r *Relationship, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		if err := postgres.LockAccount(ctx, tx, r.AccountID); err != nil {
			return err
		}

		if err := repository.checkEndpoints(ctx, tx, r); err != nil {
			return err
		}

		r.Person1ID, r.Person2ID = Canonicalize(r.Type, r.Person1ID, r.Person2ID)

		existing, err := repository.loadEdgesBetween(ctx, tx, r.AccountID, r.Person1ID, r.Person2ID, r.Type)
		if err != nil {
			return err
		}
		if dup := FindDuplicate(existing, r); dup != nil {
			return apperr.DuplicateRelationship(
				fmt.Sprintf("An identical %s relationship already covers this period (id %d)", r.Type, dup.ID))
		}

		if r.Type == TypeParent {
			parents, err := repository.loadParentMap(ctx, tx, r.AccountID)
			if err != nil {
				return err
			}
			if WouldCreateCycle(parents, r.Person1ID, r.Person2ID) {
				return apperr.CycleDetected("Edge would make a person their own ancestor")
			}
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING %s, %s, %s
		`,
			schema.CoreRelationship.Table, schema.CoreRelationship.AccountID,
			schema.CoreRelationship.Person1ID, schema.CoreRelationship.Person2ID,
			schema.CoreRelationship.RelType, schema.CoreRelationship.StartDate,
			schema.CoreRelationship.EndDate, schema.CoreRelationship.Detail,
			schema.CoreRelationship.CreatedAt, schema.CoreRelationship.UpdatedAt,
			schema.CoreRelationship.ID, schema.CoreRelationship.CreatedAt, schema.CoreRelationship.UpdatedAt,
		)

		err = tx.QueryRow(ctx, query,
			r.AccountID, r.Person1ID, r.Person2ID, r.Type, r.StartDate, r.EndDate, r.Detail,
		).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_relationship")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  r.AccountID,
			EntityType: entity.KindRelationship,
			EntityID:   r.ID,
			AuthorID:   authorID,
			Action:     revision.ActionCreate,
			After:      r.Snapshot(),
		})
	})
}

func (repository *PostgresRepository) UpdateRelationship(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Relationship, error) {
	var updated *Relationship

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		if err := postgres.LockAccount(ctx, tx, accountID); err != nil {
			return err
		}

		query := `SELECT ` + relationshipColumns("") +
			fmt.Sprintf(`, %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
				schema.CoreRelationship.DeletedAt, schema.CoreRelationship.Table,
				schema.CoreRelationship.ID, schema.CoreRelationship.AccountID)

		r := &Relationship{}
		err := tx.QueryRow(ctx, query, id, accountID).Scan(
			&r.ID, &r.AccountID, &r.Person1ID, &r.Person2ID, &r.Type,
			&r.StartDate, &r.EndDate, &r.Detail, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "lock_relationship")
		}
		if r.DeletedAt != nil {
			return apperr.Conflict("Relationship was deleted by a concurrent request")
		}

		before := r.Snapshot()
		patch.Apply(r)
		changedBefore, changedAfter := revision.Diff(before, r.Snapshot())
		if changedBefore == nil {
			updated = r
			return nil
		}

		// Order is checked against the merged row: a patch touching only one
		// endpoint can still invert the interval.
		orderCheck := &validate.Validator{}
		orderCheck.DateOrder(FieldEndDate, r.StartDate, r.EndDate)
		if err := orderCheck.Err(); err != nil {
			return err
		}

		// A widened interval can collide with a sibling edge.
		existing, err := repository.loadEdgesBetween(ctx, tx, accountID, r.Person1ID, r.Person2ID, r.Type)
		if err != nil {
			return err
		}
		if dup := FindDuplicate(existing, r); dup != nil {
			return apperr.DuplicateRelationship(
				fmt.Sprintf("An identical %s relationship already covers this period (id %d)", r.Type, dup.ID))
		}

		update := fmt.Sprintf(`
			UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
			WHERE %s = $1
			RETURNING %s
		`,
			schema.CoreRelationship.Table, schema.CoreRelationship.StartDate,
			schema.CoreRelationship.EndDate, schema.CoreRelationship.Detail,
			schema.CoreRelationship.UpdatedAt, schema.CoreRelationship.ID,
			schema.CoreRelationship.UpdatedAt,
		)
		if err := tx.QueryRow(ctx, update, r.ID, r.StartDate, r.EndDate, r.Detail).Scan(&r.UpdatedAt); err != nil {
			return dberr.Wrap(err, "update_relationship")
		}

		if err := repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindRelationship,
			EntityID:   r.ID,
			AuthorID:   authorID,
			Action:     revision.ActionUpdate,
			Before:     changedBefore,
			After:      changedAfter,
		}); err != nil {
			return err
		}

		updated = r
		return nil
	})

	return updated, err
}

func (repository *PostgresRepository) SoftDeleteRelationship(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.CoreRelationship.AccountID, schema.CoreRelationship.DeletedAt,
			schema.CoreRelationship.Table, schema.CoreRelationship.ID)

		var owner int64
		var deletedAt *time.Time
		if err := tx.QueryRow(ctx, query, id).Scan(&owner, &deletedAt); err != nil {
			return dberr.Wrap(err, "lock_relationship")
		}
		if owner != accountID {
			return apperr.Forbidden("Relationship belongs to another account")
		}
		if deletedAt != nil {
			return apperr.NotFound("Relationship")
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreRelationship.Table, schema.CoreRelationship.DeletedAt,
			schema.CoreRelationship.UpdatedAt, schema.CoreRelationship.ID, schema.CoreRelationship.DeletedAt)

		var stamped time.Time
		if err := tx.QueryRow(ctx, update, id).Scan(&stamped); err != nil {
			return dberr.Wrap(err, "soft_delete_relationship")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindRelationship,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionDelete,
			After:      revision.Fields{"deleted_at": stamped.UTC().Format(time.RFC3339)},
		})
	})
}

// checkEndpoints verifies both endpoints exist, are live, and share the
// edge's account. A live person in another account is reported as
// INVALID_RELATIONSHIP; an invisible (missing or tombstoned) person as
// NOT_FOUND.
func (repository *PostgresRepository) checkEndpoints(ctx context.Context, tx pgx.Tx, r *Relationship) error {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1) AND %s IS NULL`,
		schema.CorePerson.ID, schema.CorePerson.AccountID, schema.CorePerson.Table,
		schema.CorePerson.ID, schema.CorePerson.DeletedAt)

	rows, err := tx.Query(ctx, query, []int64{r.Person1ID, r.Person2ID})
	if err != nil {
		return dberr.Wrap(err, "check_endpoints")
	}
	defer rows.Close()

	owners := map[int64]int64{}
	for rows.Next() {
		var personID, owner int64
		if err := rows.Scan(&personID, &owner); err != nil {
			return dberr.Wrap(err, "scan_endpoint")
		}
		owners[personID] = owner
	}

	for _, personID := range []int64{r.Person1ID, r.Person2ID} {
		owner, ok := owners[personID]
		if !ok {
			return apperr.NotFound("Person")
		}
		if owner != r.AccountID {
			return apperr.InvalidRelationship("Both people must belong to the same account")
		}
	}
	return nil
}

// loadEdgesBetween loads the live edges sharing the candidate's canonical
// endpoint pair and type, for duplicate-interval checks.
func (repository *PostgresRepository) loadEdgesBetween(ctx context.Context, tx pgx.Tx, accountID, person1, person2 int64, relType Type) ([]*Relationship, error) {
	query := `SELECT ` + relationshipColumns("") +
		fmt.Sprintf(` FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s = $4 AND %s IS NULL`,
			schema.CoreRelationship.Table, schema.CoreRelationship.AccountID,
			schema.CoreRelationship.Person1ID, schema.CoreRelationship.Person2ID,
			schema.CoreRelationship.RelType, schema.CoreRelationship.DeletedAt)

	rows, err := tx.Query(ctx, query, accountID, person1, person2, relType)
	if err != nil {
		return nil, dberr.Wrap(err, "load_edges")
	}
	defer rows.Close()

	var edges []*Relationship
	for rows.Next() {
		edge, err := scanRelationship(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_relationship")
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// loadParentMap builds the account's child → parents adjacency from live
// parent edges.
func (repository *PostgresRepository) loadParentMap(ctx context.Context, tx pgx.Tx, accountID int64) (map[int64][]int64, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = 'parent' AND %s IS NULL`,
		schema.CoreRelationship.Person1ID, schema.CoreRelationship.Person2ID,
		schema.CoreRelationship.Table, schema.CoreRelationship.AccountID,
		schema.CoreRelationship.RelType, schema.CoreRelationship.DeletedAt)

	rows, err := tx.Query(ctx, query, accountID)
	if err != nil {
		return nil, dberr.Wrap(err, "load_parent_edges")
	}
	defer rows.Close()

	parents := map[int64][]int64{}
	for rows.Next() {
		var parentID, childID int64
		if err := rows.Scan(&parentID, &childID); err != nil {
			return nil, dberr.Wrap(err, "scan_parent_edge")
		}
		parents[childID] = append(parents[childID], parentID)
	}
	return parents, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
