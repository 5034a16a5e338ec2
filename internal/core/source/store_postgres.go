package source

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
)

type PostgresRepository struct {
	db        *pgxpool.Pool
	revisions revision.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, revisions revision.Repository) *PostgresRepository {
	return &PostgresRepository{db: db, revisions: revisions}
}

func (repository *PostgresRepository) ListSources(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Source, int, error) {
	base := fmt.Sprintf(` FROM %s s WHERE s.%s = $1 AND s.%s IS NULL`,
		schema.CoreSource.Table, schema.CoreSource.AccountID, schema.CoreSource.DeletedAt)
	args := []any{accountID}

	if f.Query != "" {
		base += fmt.Sprintf(` AND s.%s ILIKE $%s`, schema.CoreSource.Title, itos(len(args)+1))
		args = append(args, "%"+f.Query+"%")
	}
	if f.Target != nil {
		base += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM %s l WHERE l.%s = s.%s AND l.%s = $%s AND l.%s = $%s)`,
			schema.CoreSourceLink.Table, schema.CoreSourceLink.SourceID, schema.CoreSource.ID,
			schema.CoreSourceLink.EntityType, itos(len(args)+1),
			schema.CoreSourceLink.EntityID, itos(len(args)+2))
		args = append(args, f.Target.Kind, f.Target.ID)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_sources")
	}

	query := fmt.Sprintf(`SELECT s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s`,
		schema.CoreSource.ID, schema.CoreSource.AccountID, schema.CoreSource.Title,
		schema.CoreSource.Citation, schema.CoreSource.URL, schema.CoreSource.CreatedAt, schema.CoreSource.UpdatedAt,
	) + base + fmt.Sprintf(` ORDER BY s.%s ASC, s.%s ASC LIMIT $%s OFFSET $%s`,
		schema.CoreSource.Title, schema.CoreSource.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_sources")
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		s := &Source{}
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Title, &s.Citation, &s.URL, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_source")
		}
		sources = append(sources, s)
	}

	return sources, total, nil
}

func (repository *PostgresRepository) GetSource(ctx context.Context, accountID, id int64) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		schema.CoreSource.ID, schema.CoreSource.AccountID, schema.CoreSource.Title,
		schema.CoreSource.Citation, schema.CoreSource.URL, schema.CoreSource.CreatedAt, schema.CoreSource.UpdatedAt,
		schema.CoreSource.Table, schema.CoreSource.ID, schema.CoreSource.AccountID, schema.CoreSource.DeletedAt,
	)

	s := &Source{}
	err := repository.db.QueryRow(ctx, query, id, accountID).Scan(
		&s.ID, &s.AccountID, &s.Title, &s.Citation, &s.URL, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_source")
	}
	return s, nil
}

func (repository *PostgresRepository) CreateSource(ctx context.Context, s *Source, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING %s, %s, %s
		`,
			schema.CoreSource.Table, schema.CoreSource.AccountID, schema.CoreSource.Title,
			schema.CoreSource.Citation, schema.CoreSource.URL, schema.CoreSource.CreatedAt, schema.CoreSource.UpdatedAt,
			schema.CoreSource.ID, schema.CoreSource.CreatedAt, schema.CoreSource.UpdatedAt,
		)
		err := tx.QueryRow(ctx, query, s.AccountID, s.Title, s.Citation, s.URL).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_source")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  s.AccountID,
			EntityType: entity.KindSource,
			EntityID:   s.ID,
			AuthorID:   authorID,
			Action:     revision.ActionCreate,
			After:      s.Snapshot(),
		})
	})
}

func (repository *PostgresRepository) UpdateSource(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Source, error) {
	var updated *Source

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
			schema.CoreSource.ID, schema.CoreSource.AccountID, schema.CoreSource.Title,
			schema.CoreSource.Citation, schema.CoreSource.URL, schema.CoreSource.CreatedAt,
			schema.CoreSource.UpdatedAt, schema.CoreSource.DeletedAt,
			schema.CoreSource.Table, schema.CoreSource.ID, schema.CoreSource.AccountID,
		)

		s := &Source{}
		err := tx.QueryRow(ctx, query, id, accountID).Scan(
			&s.ID, &s.AccountID, &s.Title, &s.Citation, &s.URL, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "lock_source")
		}
		if s.DeletedAt != nil {
			return apperr.Conflict("Source was deleted by a concurrent request")
		}

		before := s.Snapshot()
		patch.Apply(s)
		changedBefore, changedAfter := revision.Diff(before, s.Snapshot())
		if changedBefore == nil {
			updated = s
			return nil
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreSource.Table, schema.CoreSource.Title, schema.CoreSource.Citation,
			schema.CoreSource.URL, schema.CoreSource.UpdatedAt, schema.CoreSource.ID, schema.CoreSource.UpdatedAt,
		)
		if err := tx.QueryRow(ctx, update, s.ID, s.Title, s.Citation, s.URL).Scan(&s.UpdatedAt); err != nil {
			return dberr.Wrap(err, "update_source")
		}

		if err := repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindSource,
			EntityID:   s.ID,
			AuthorID:   authorID,
			Action:     revision.ActionUpdate,
			Before:     changedBefore,
			After:      changedAfter,
		}); err != nil {
			return err
		}

		updated = s
		return nil
	})

	return updated, err
}

func (repository *PostgresRepository) SoftDeleteSource(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.CoreSource.AccountID, schema.CoreSource.DeletedAt, schema.CoreSource.Table, schema.CoreSource.ID)

		var owner int64
		var deletedAt *time.Time
		if err := tx.QueryRow(ctx, query, id).Scan(&owner, &deletedAt); err != nil {
			return dberr.Wrap(err, "lock_source")
		}
		if owner != accountID {
			return apperr.Forbidden("Source belongs to another account")
		}
		if deletedAt != nil {
			return apperr.NotFound("Source")
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreSource.Table, schema.CoreSource.DeletedAt, schema.CoreSource.UpdatedAt,
			schema.CoreSource.ID, schema.CoreSource.DeletedAt)

		var stamped time.Time
		if err := tx.QueryRow(ctx, update, id).Scan(&stamped); err != nil {
			return dberr.Wrap(err, "soft_delete_source")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindSource,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionDelete,
			After:      revision.Fields{"deleted_at": stamped.UTC().Format(time.RFC3339)},
		})
	})
}

func (repository *PostgresRepository) LinkSource(ctx context.Context, accountID, sourceID int64, target entity.Ref, authorID int64) (*Link, error) {
	link := &Link{SourceID: sourceID, Target: target}

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		var exists bool
		check := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL)`,
			schema.CoreSource.Table, schema.CoreSource.ID, schema.CoreSource.AccountID, schema.CoreSource.DeletedAt)
		if err := tx.QueryRow(ctx, check, sourceID, accountID).Scan(&exists); err != nil {
			return dberr.Wrap(err, "check_source")
		}
		if !exists {
			return apperr.NotFound("Source")
		}

		ok, err := entity.ExistsLive(ctx, tx, accountID, target)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(target.Kind.Label())
		}

		insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, NOW()) RETURNING %s`,
			schema.CoreSourceLink.Table, schema.CoreSourceLink.AccountID, schema.CoreSourceLink.SourceID,
			schema.CoreSourceLink.EntityType, schema.CoreSourceLink.EntityID,
			schema.CoreSourceLink.CreatedAt, schema.CoreSourceLink.ID)
		if err := tx.QueryRow(ctx, insert, accountID, sourceID, target.Kind, target.ID).Scan(&link.ID); err != nil {
			return dberr.Wrap(err, "link_source")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindSource,
			EntityID:   sourceID,
			AuthorID:   authorID,
			Action:     revision.ActionLink,
			After:      linkFields(target),
		})
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (repository *PostgresRepository) UnlinkSource(ctx context.Context, accountID, linkID, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s, %s, %s`,
			schema.CoreSourceLink.Table, schema.CoreSourceLink.ID, schema.CoreSourceLink.AccountID,
			schema.CoreSourceLink.SourceID, schema.CoreSourceLink.EntityType, schema.CoreSourceLink.EntityID)

		var sourceID int64
		var target entity.Ref
		if err := tx.QueryRow(ctx, query, linkID, accountID).Scan(&sourceID, &target.Kind, &target.ID); err != nil {
			return dberr.Wrap(err, "unlink_source")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindSource,
			EntityID:   sourceID,
			AuthorID:   authorID,
			Action:     revision.ActionUnlink,
			Before:     linkFields(target),
		})
	})
}

// linkFields projects an attachment target for the ledger.
func linkFields(target entity.Ref) revision.Fields {
	return revision.Fields{
		"entity_type": string(target.Kind),
		"entity_id":   target.ID,
	}
}

func (repository *PostgresRepository) ListLinks(ctx context.Context, accountID, sourceID int64) ([]Link, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC`,
		schema.CoreSourceLink.ID, schema.CoreSourceLink.SourceID, schema.CoreSourceLink.EntityType,
		schema.CoreSourceLink.EntityID, schema.CoreSourceLink.Table,
		schema.CoreSourceLink.AccountID, schema.CoreSourceLink.SourceID, schema.CoreSourceLink.ID)

	rows, err := repository.db.Query(ctx, query, accountID, sourceID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_source_links")
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.SourceID, &link.Target.Kind, &link.Target.ID); err != nil {
			return nil, dberr.Wrap(err, "scan_source_link")
		}
		links = append(links, link)
	}
	return links, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
