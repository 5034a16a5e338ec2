package media

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

func (repository *PostgresRepository) ListMedia(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Media, int, error) {
	base := fmt.Sprintf(` FROM %s m WHERE m.%s = $1 AND m.%s IS NULL`,
		schema.CoreMedia.Table, schema.CoreMedia.AccountID, schema.CoreMedia.DeletedAt)
	args := []any{accountID}

	if f.MediaType != "" {
		base += fmt.Sprintf(` AND m.%s = $%s`, schema.CoreMedia.MediaType, itos(len(args)+1))
		args = append(args, f.MediaType)
	}
	if f.Target != nil {
		base += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM %s l WHERE l.%s = m.%s AND l.%s = $%s AND l.%s = $%s)`,
			schema.CoreMediaLink.Table, schema.CoreMediaLink.MediaID, schema.CoreMedia.ID,
			schema.CoreMediaLink.EntityType, itos(len(args)+1),
			schema.CoreMediaLink.EntityID, itos(len(args)+2))
		args = append(args, f.Target.Kind, f.Target.ID)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_media")
	}

	query := fmt.Sprintf(`SELECT m.%s, m.%s, m.%s, m.%s, m.%s, m.%s, m.%s`,
		schema.CoreMedia.ID, schema.CoreMedia.AccountID, schema.CoreMedia.MediaType,
		schema.CoreMedia.URL, schema.CoreMedia.Caption, schema.CoreMedia.CreatedAt, schema.CoreMedia.UpdatedAt,
	) + base + fmt.Sprintf(` ORDER BY m.%s ASC LIMIT $%s OFFSET $%s`,
		schema.CoreMedia.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_media")
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		m := &Media{}
		if err := rows.Scan(&m.ID, &m.AccountID, &m.MediaType, &m.URL, &m.Caption, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_media")
		}
		items = append(items, m)
	}

	return items, total, nil
}

func (repository *PostgresRepository) GetMedia(ctx context.Context, accountID, id int64) (*Media, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		schema.CoreMedia.ID, schema.CoreMedia.AccountID, schema.CoreMedia.MediaType,
		schema.CoreMedia.URL, schema.CoreMedia.Caption, schema.CoreMedia.CreatedAt, schema.CoreMedia.UpdatedAt,
		schema.CoreMedia.Table, schema.CoreMedia.ID, schema.CoreMedia.AccountID, schema.CoreMedia.DeletedAt,
	)

	m := &Media{}
	err := repository.db.QueryRow(ctx, query, id, accountID).Scan(
		&m.ID, &m.AccountID, &m.MediaType, &m.URL, &m.Caption, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_media")
	}
	return m, nil
}

func (repository *PostgresRepository) CreateMedia(ctx context.Context, m *Media, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING %s, %s, %s
		`,
			schema.CoreMedia.Table, schema.CoreMedia.AccountID, schema.CoreMedia.MediaType,
			schema.CoreMedia.URL, schema.CoreMedia.Caption, schema.CoreMedia.CreatedAt, schema.CoreMedia.UpdatedAt,
			schema.CoreMedia.ID, schema.CoreMedia.CreatedAt, schema.CoreMedia.UpdatedAt,
		)
		err := tx.QueryRow(ctx, query, m.AccountID, m.MediaType, m.URL, m.Caption).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_media")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  m.AccountID,
			EntityType: entity.KindMedia,
			EntityID:   m.ID,
			AuthorID:   authorID,
			Action:     revision.ActionCreate,
			After:      m.Snapshot(),
		})
	})
}

func (repository *PostgresRepository) UpdateMedia(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Media, error) {
	var updated *Media

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
			schema.CoreMedia.ID, schema.CoreMedia.AccountID, schema.CoreMedia.MediaType,
			schema.CoreMedia.URL, schema.CoreMedia.Caption, schema.CoreMedia.CreatedAt,
			schema.CoreMedia.UpdatedAt, schema.CoreMedia.DeletedAt,
			schema.CoreMedia.Table, schema.CoreMedia.ID, schema.CoreMedia.AccountID,
		)

		m := &Media{}
		err := tx.QueryRow(ctx, query, id, accountID).Scan(
			&m.ID, &m.AccountID, &m.MediaType, &m.URL, &m.Caption, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "lock_media")
		}
		if m.DeletedAt != nil {
			return apperr.Conflict("Media was deleted by a concurrent request")
		}

		before := m.Snapshot()
		patch.Apply(m)
		changedBefore, changedAfter := revision.Diff(before, m.Snapshot())
		if changedBefore == nil {
			updated = m
			return nil
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreMedia.Table, schema.CoreMedia.MediaType, schema.CoreMedia.URL,
			schema.CoreMedia.Caption, schema.CoreMedia.UpdatedAt, schema.CoreMedia.ID, schema.CoreMedia.UpdatedAt,
		)
		if err := tx.QueryRow(ctx, update, m.ID, m.MediaType, m.URL, m.Caption).Scan(&m.UpdatedAt); err != nil {
			return dberr.Wrap(err, "update_media")
		}

		if err := repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindMedia,
			EntityID:   m.ID,
			AuthorID:   authorID,
			Action:     revision.ActionUpdate,
			Before:     changedBefore,
			After:      changedAfter,
		}); err != nil {
			return err
		}

		updated = m
		return nil
	})

	return updated, err
}

func (repository *PostgresRepository) SoftDeleteMedia(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.CoreMedia.AccountID, schema.CoreMedia.DeletedAt, schema.CoreMedia.Table, schema.CoreMedia.ID)

		var owner int64
		var deletedAt *time.Time
		if err := tx.QueryRow(ctx, query, id).Scan(&owner, &deletedAt); err != nil {
			return dberr.Wrap(err, "lock_media")
		}
		if owner != accountID {
			return apperr.Forbidden("Media belongs to another account")
		}
		if deletedAt != nil {
			return apperr.NotFound("Media")
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreMedia.Table, schema.CoreMedia.DeletedAt, schema.CoreMedia.UpdatedAt,
			schema.CoreMedia.ID, schema.CoreMedia.DeletedAt)

		var stamped time.Time
		if err := tx.QueryRow(ctx, update, id).Scan(&stamped); err != nil {
			return dberr.Wrap(err, "soft_delete_media")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindMedia,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionDelete,
			After:      revision.Fields{"deleted_at": stamped.UTC().Format(time.RFC3339)},
		})
	})
}

// LinkMedia attaches media to a target record after verifying both sides are
// live in the same account, all inside one transaction.
func (repository *PostgresRepository) LinkMedia(ctx context.Context, accountID, mediaID int64, target entity.Ref, authorID int64) (*Link, error) {
	link := &Link{MediaID: mediaID, Target: target}

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		var exists bool
		check := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL)`,
			schema.CoreMedia.Table, schema.CoreMedia.ID, schema.CoreMedia.AccountID, schema.CoreMedia.DeletedAt)
		if err := tx.QueryRow(ctx, check, mediaID, accountID).Scan(&exists); err != nil {
			return dberr.Wrap(err, "check_media")
		}
		if !exists {
			return apperr.NotFound("Media")
		}

		ok, err := entity.ExistsLive(ctx, tx, accountID, target)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound(target.Kind.Label())
		}

		insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, NOW()) RETURNING %s`,
			schema.CoreMediaLink.Table, schema.CoreMediaLink.AccountID, schema.CoreMediaLink.MediaID,
			schema.CoreMediaLink.EntityType, schema.CoreMediaLink.EntityID,
			schema.CoreMediaLink.CreatedAt, schema.CoreMediaLink.ID)
		if err := tx.QueryRow(ctx, insert, accountID, mediaID, target.Kind, target.ID).Scan(&link.ID); err != nil {
			return dberr.Wrap(err, "link_media")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindMedia,
			EntityID:   mediaID,
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

func (repository *PostgresRepository) UnlinkMedia(ctx context.Context, accountID, linkID, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s, %s, %s`,
			schema.CoreMediaLink.Table, schema.CoreMediaLink.ID, schema.CoreMediaLink.AccountID,
			schema.CoreMediaLink.MediaID, schema.CoreMediaLink.EntityType, schema.CoreMediaLink.EntityID)

		var mediaID int64
		var target entity.Ref
		if err := tx.QueryRow(ctx, query, linkID, accountID).Scan(&mediaID, &target.Kind, &target.ID); err != nil {
			return dberr.Wrap(err, "unlink_media")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindMedia,
			EntityID:   mediaID,
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

func (repository *PostgresRepository) ListLinks(ctx context.Context, accountID, mediaID int64) ([]Link, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s ASC`,
		schema.CoreMediaLink.ID, schema.CoreMediaLink.MediaID, schema.CoreMediaLink.EntityType,
		schema.CoreMediaLink.EntityID, schema.CoreMediaLink.Table,
		schema.CoreMediaLink.AccountID, schema.CoreMediaLink.MediaID, schema.CoreMediaLink.ID)

	rows, err := repository.db.Query(ctx, query, accountID, mediaID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_media_links")
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.MediaID, &link.Target.Kind, &link.Target.ID); err != nil {
			return nil, dberr.Wrap(err, "scan_media_link")
		}
		links = append(links, link)
	}
	return links, nil
}

func itos(i int) string {
	return strconv.Itoa(i)
}
