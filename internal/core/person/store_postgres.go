package person

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/database/schema"
	"github.com/phamducminh/rootline/internal/platform/dberr"
	"github.com/phamducminh/rootline/internal/platform/postgres"
	"github.com/phamducminh/rootline/internal/revision"
	"github.com/phamducminh/rootline/pkg/namekey"
)

type PostgresRepository struct {
	db        *pgxpool.Pool
	revisions revision.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, revisions revision.Repository) *PostgresRepository {
	return &PostgresRepository{db: db, revisions: revisions}
}

func personColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.CorePerson.ID, schema.CorePerson.AccountID, schema.CorePerson.GivenName,
		schema.CorePerson.FamilyName, schema.CorePerson.OtherNames, schema.CorePerson.Gender,
		schema.CorePerson.BirthDate, schema.CorePerson.DeathDate, schema.CorePerson.BirthPlace,
		schema.CorePerson.DeathPlace, schema.CorePerson.Bio, schema.CorePerson.Privacy,
		schema.CorePerson.CreatedAt, schema.CorePerson.UpdatedAt, schema.CorePerson.DeletedAt,
	)
}

func scanPerson(row pgx.Row) (*Person, error) {
	p := &Person{}
	err := row.Scan(
		&p.ID, &p.AccountID, &p.GivenName, &p.FamilyName, &p.OtherNames, &p.Gender,
		&p.BirthDate, &p.DeathDate, &p.BirthPlace, &p.DeathPlace, &p.Bio, &p.Privacy,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	return p, err
}

func (repository *PostgresRepository) ListPeople(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Person, int, error) {
	base := fmt.Sprintf(` FROM %s WHERE %s = $1 AND %s IS NULL`,
		schema.CorePerson.Table, schema.CorePerson.AccountID, schema.CorePerson.DeletedAt)
	args := []any{accountID}

	if f.Query != "" {
		base += fmt.Sprintf(` AND %s LIKE $%s`, schema.CorePerson.NameKey, itos(len(args)+1))
		args = append(args, "%"+namekey.Fold(f.Query)+"%")
	}
	if f.Gender != "" {
		base += fmt.Sprintf(` AND %s = $%s`, schema.CorePerson.Gender, itos(len(args)+1))
		args = append(args, f.Gender)
	}
	if f.Privacy != "" {
		base += fmt.Sprintf(` AND %s = $%s`, schema.CorePerson.Privacy, itos(len(args)+1))
		args = append(args, f.Privacy)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_people")
	}

	// Name-key ordering with id tiebreak keeps pagination stable.
	query := `SELECT ` + personColumns() + base +
		fmt.Sprintf(` ORDER BY %s ASC, %s ASC LIMIT $%s OFFSET $%s`,
			schema.CorePerson.NameKey, schema.CorePerson.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_people")
	}
	defer rows.Close()

	var people []*Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_person")
		}
		people = append(people, p)
	}

	return people, total, nil
}

func (repository *PostgresRepository) GetPerson(ctx context.Context, accountID, id int64, includeDeleted bool) (*Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		personColumns(), schema.CorePerson.Table, schema.CorePerson.ID, schema.CorePerson.AccountID)
	if !includeDeleted {
		query += fmt.Sprintf(` AND %s IS NULL`, schema.CorePerson.DeletedAt)
	}

	p, err := scanPerson(repository.db.QueryRow(ctx, query, id, accountID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_person")
	}
	return p, nil
}

func (repository *PostgresRepository) CreatePerson(ctx context.Context, p *Person, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING %s, %s, %s
		`,
			schema.CorePerson.Table, schema.CorePerson.AccountID, schema.CorePerson.GivenName,
			schema.CorePerson.FamilyName, schema.CorePerson.OtherNames, schema.CorePerson.Gender,
			schema.CorePerson.BirthDate, schema.CorePerson.DeathDate, schema.CorePerson.BirthPlace,
			schema.CorePerson.DeathPlace, schema.CorePerson.Bio, schema.CorePerson.Privacy,
			schema.CorePerson.NameKey, schema.CorePerson.CreatedAt, schema.CorePerson.UpdatedAt,
			schema.CorePerson.ID, schema.CorePerson.CreatedAt, schema.CorePerson.UpdatedAt,
		)

		err := tx.QueryRow(ctx, query,
			p.AccountID, p.GivenName, p.FamilyName, p.OtherNames, p.Gender,
			p.BirthDate, p.DeathDate, p.BirthPlace, p.DeathPlace, p.Bio, p.Privacy,
			namekey.For(p.FamilyName, p.GivenName),
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_person")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  p.AccountID,
			EntityType: entity.KindPerson,
			EntityID:   p.ID,
			AuthorID:   authorID,
			Action:     revision.ActionCreate,
			After:      p.Snapshot(),
		})
	})
}

func (repository *PostgresRepository) UpdatePerson(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Person, error) {
	var updated *Person

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		// Lock the row regardless of tombstone state: an update racing a
		// soft delete must see the tombstone, not a phantom NOT_FOUND.
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
			personColumns(), schema.CorePerson.Table, schema.CorePerson.ID, schema.CorePerson.AccountID)

		p, err := scanPerson(tx.QueryRow(ctx, query, id, accountID))
		if err != nil {
			return dberr.Wrap(err, "lock_person")
		}
		if p.DeletedAt != nil {
			return apperr.Conflict("Person was deleted by a concurrent request")
		}

		before := p.Snapshot()
		patch.Apply(p)
		after := p.Snapshot()

		changedBefore, changedAfter := revision.Diff(before, after)
		if changedBefore == nil {
			updated = p
			return nil
		}

		update := fmt.Sprintf(`
			UPDATE %s
			SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
			    %s = $9, %s = $10, %s = $11, %s = $12, %s = NOW()
			WHERE %s = $1
			RETURNING %s
		`,
			schema.CorePerson.Table, schema.CorePerson.GivenName, schema.CorePerson.FamilyName,
			schema.CorePerson.OtherNames, schema.CorePerson.Gender, schema.CorePerson.BirthDate,
			schema.CorePerson.DeathDate, schema.CorePerson.BirthPlace, schema.CorePerson.DeathPlace,
			schema.CorePerson.Bio, schema.CorePerson.Privacy, schema.CorePerson.NameKey,
			schema.CorePerson.UpdatedAt, schema.CorePerson.ID, schema.CorePerson.UpdatedAt,
		)

		err = tx.QueryRow(ctx, update,
			p.ID, p.GivenName, p.FamilyName, p.OtherNames, p.Gender, p.BirthDate,
			p.DeathDate, p.BirthPlace, p.DeathPlace, p.Bio, p.Privacy,
			namekey.For(p.FamilyName, p.GivenName),
		).Scan(&p.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "update_person")
		}

		if err := repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindPerson,
			EntityID:   p.ID,
			AuthorID:   authorID,
			Action:     revision.ActionUpdate,
			Before:     changedBefore,
			After:      changedAfter,
		}); err != nil {
			return err
		}

		updated = p
		return nil
	})

	return updated, err
}

func (repository *PostgresRepository) SoftDeletePerson(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		owner, deleted, err := repository.lockOwnership(ctx, tx, id)
		if err != nil {
			return err
		}
		if owner != accountID {
			return apperr.Forbidden("Person belongs to another account")
		}
		if deleted {
			return apperr.NotFound("Person")
		}

		var deletedAt time.Time
		query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CorePerson.Table, schema.CorePerson.DeletedAt, schema.CorePerson.UpdatedAt,
			schema.CorePerson.ID, schema.CorePerson.DeletedAt,
		)
		if err := tx.QueryRow(ctx, query, id).Scan(&deletedAt); err != nil {
			return dberr.Wrap(err, "soft_delete_person")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindPerson,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionDelete,
			After:      revision.Fields{"deleted_at": deletedAt.UTC().Format(time.RFC3339)},
		})
	})
}

// HardPurgePerson physically removes a person and every row that references
// them: relationships, event participations, media links, and source links.
// Ledger rows for the purged entities are kept; a purge revision is appended
// for the person and each cascaded relationship.
func (repository *PostgresRepository) HardPurgePerson(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		// Relationship mutations serialize on the account's advisory lock;
		// the cascade deletes relationship rows, so it takes the lock too.
		if err := postgres.LockAccount(ctx, tx, accountID); err != nil {
			return err
		}

		owner, _, err := repository.lockOwnership(ctx, tx, id)
		if err != nil {
			return err
		}
		if owner != accountID {
			return apperr.Forbidden("Person belongs to another account")
		}

		relationshipIDs, err := repository.purgeRelationships(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(relationshipIDs) > 0 {
			for _, table := range []struct{ name, kindCol, idCol string }{
				{schema.CoreMediaLink.Table, schema.CoreMediaLink.EntityType, schema.CoreMediaLink.EntityID},
				{schema.CoreSourceLink.Table, schema.CoreSourceLink.EntityType, schema.CoreSourceLink.EntityID},
			} {
				query := fmt.Sprintf(`DELETE FROM %s WHERE %s = 'relationship' AND %s = ANY($1)`,
					table.name, table.kindCol, table.idCol)
				if _, err := tx.Exec(ctx, query, relationshipIDs); err != nil {
					return dberr.Wrap(err, "purge_relationship_links")
				}
			}
		}

		steps := []struct {
			action string
			query  string
		}{
			{"purge_event_links", fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
				schema.CoreEventPerson.Table, schema.CoreEventPerson.PersonID)},
			{"purge_media_links", fmt.Sprintf(`DELETE FROM %s WHERE %s = 'person' AND %s = $1`,
				schema.CoreMediaLink.Table, schema.CoreMediaLink.EntityType, schema.CoreMediaLink.EntityID)},
			{"purge_source_links", fmt.Sprintf(`DELETE FROM %s WHERE %s = 'person' AND %s = $1`,
				schema.CoreSourceLink.Table, schema.CoreSourceLink.EntityType, schema.CoreSourceLink.EntityID)},
			{"purge_person", fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
				schema.CorePerson.Table, schema.CorePerson.ID)},
		}
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.query, id); err != nil {
				return dberr.Wrap(err, step.action)
			}
		}

		for _, relationshipID := range relationshipIDs {
			if err := repository.revisions.Append(ctx, tx, &revision.Revision{
				AccountID:  accountID,
				EntityType: entity.KindRelationship,
				EntityID:   relationshipID,
				AuthorID:   authorID,
				Action:     revision.ActionPurge,
			}); err != nil {
				return err
			}
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindPerson,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionPurge,
		})
	})
}

// lockOwnership locks a person row without account scoping so the caller can
// distinguish "not yours" (403) from "does not exist" (404).
func (repository *PostgresRepository) lockOwnership(ctx context.Context, tx pgx.Tx, id int64) (int64, bool, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
		schema.CorePerson.AccountID, schema.CorePerson.DeletedAt, schema.CorePerson.Table, schema.CorePerson.ID)

	var owner int64
	var deletedAt *time.Time
	if err := tx.QueryRow(ctx, query, id).Scan(&owner, &deletedAt); err != nil {
		return 0, false, dberr.Wrap(err, "lock_person")
	}
	return owner, deletedAt != nil, nil
}

func (repository *PostgresRepository) purgeRelationships(ctx context.Context, tx pgx.Tx, personID int64) ([]int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 OR %s = $1 RETURNING %s`,
		schema.CoreRelationship.Table, schema.CoreRelationship.Person1ID,
		schema.CoreRelationship.Person2ID, schema.CoreRelationship.ID)

	rows, err := tx.Query(ctx, query, personID)
	if err != nil {
		return nil, dberr.Wrap(err, "purge_relationships")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var relationshipID int64
		if err := rows.Scan(&relationshipID); err != nil {
			return nil, dberr.Wrap(err, "scan_relationship_id")
		}
		ids = append(ids, relationshipID)
	}
	return ids, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
