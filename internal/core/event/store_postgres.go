package event

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
	"github.com/phamducminh/rootline/internal/revision"
)

type PostgresRepository struct {
	db        *pgxpool.Pool
	revisions revision.Repository
}

func NewPostgresRepository(db *pgxpool.Pool, revisions revision.Repository) *PostgresRepository {
	return &PostgresRepository{db: db, revisions: revisions}
}

func eventColumns(alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	columns := []string{
		schema.CoreEvent.ID, schema.CoreEvent.AccountID, schema.CoreEvent.EventType,
		schema.CoreEvent.EventDate, schema.CoreEvent.Place, schema.CoreEvent.Description,
		schema.CoreEvent.CreatedByID, schema.CoreEvent.CreatedAt, schema.CoreEvent.UpdatedAt,
	}
	for i := range columns {
		columns[i] = prefix + columns[i]
	}
	return strings.Join(columns, ", ")
}

func scanEvent(row pgx.Row) (*Event, error) {
	e := &Event{}
	err := row.Scan(
		&e.ID, &e.AccountID, &e.EventType, &e.EventDate, &e.Place,
		&e.Description, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (repository *PostgresRepository) ListEvents(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Event, int, error) {
	base := fmt.Sprintf(` FROM %s e WHERE e.%s = $1 AND e.%s IS NULL`,
		schema.CoreEvent.Table, schema.CoreEvent.AccountID, schema.CoreEvent.DeletedAt)
	args := []any{accountID}

	if f.PersonID > 0 {
		// Participation joins through live people only.
		base += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s ep JOIN %s p ON p.%s = ep.%s AND p.%s IS NULL
			WHERE ep.%s = e.%s AND ep.%s = $%s
		)`,
			schema.CoreEventPerson.Table, schema.CorePerson.Table, schema.CorePerson.ID,
			schema.CoreEventPerson.PersonID, schema.CorePerson.DeletedAt,
			schema.CoreEventPerson.EventID, schema.CoreEvent.ID,
			schema.CoreEventPerson.PersonID, itos(len(args)+1))
		args = append(args, f.PersonID)
	}
	if len(f.EventTypes) > 0 {
		base += fmt.Sprintf(` AND e.%s = ANY($%s)`, schema.CoreEvent.EventType, itos(len(args)+1))
		args = append(args, f.EventTypes)
	}

	var total int
	if err := repository.db.QueryRow(ctx, `SELECT count(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_events")
	}

	// Event-date ordering with id tiebreak; undated events sort last.
	query := `SELECT ` + eventColumns("e") + base +
		fmt.Sprintf(` ORDER BY e.%s ASC NULLS LAST, e.%s ASC LIMIT $%s OFFSET $%s`,
			schema.CoreEvent.EventDate, schema.CoreEvent.ID, itos(len(args)+1), itos(len(args)+2))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_event")
		}
		events = append(events, e)
	}

	return events, total, nil
}

func (repository *PostgresRepository) GetEvent(ctx context.Context, accountID, id int64) (*Event, error) {
	query := `SELECT ` + eventColumns("") +
		fmt.Sprintf(` FROM %s WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
			schema.CoreEvent.Table, schema.CoreEvent.ID, schema.CoreEvent.AccountID, schema.CoreEvent.DeletedAt)

	e, err := scanEvent(repository.db.QueryRow(ctx, query, id, accountID))
	if err != nil {
		return nil, dberr.Wrap(err, "get_event")
	}

	if e.Participants, err = repository.loadParticipants(ctx, id); err != nil {
		return nil, err
	}
	return e, nil
}

// loadParticipants returns live participants in person-id order.
func (repository *PostgresRepository) loadParticipants(ctx context.Context, eventID int64) ([]Participant, error) {
	query := fmt.Sprintf(`
		SELECT ep.%s, ep.%s
		FROM %s ep JOIN %s p ON p.%s = ep.%s AND p.%s IS NULL
		WHERE ep.%s = $1
		ORDER BY ep.%s ASC
	`,
		schema.CoreEventPerson.PersonID, schema.CoreEventPerson.Role,
		schema.CoreEventPerson.Table, schema.CorePerson.Table, schema.CorePerson.ID,
		schema.CoreEventPerson.PersonID, schema.CorePerson.DeletedAt,
		schema.CoreEventPerson.EventID, schema.CoreEventPerson.PersonID,
	)

	rows, err := repository.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, dberr.Wrap(err, "load_participants")
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.PersonID, &p.Role); err != nil {
			return nil, dberr.Wrap(err, "scan_participant")
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func (repository *PostgresRepository) CreateEvent(ctx context.Context, e *Event, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		if e.CreatedByID != nil {
			ok, err := entity.ExistsLive(ctx, tx, e.AccountID, entity.Ref{Kind: entity.KindPerson, ID: *e.CreatedByID})
			if err != nil {
				return err
			}
			if !ok {
				return apperr.NotFound("Person")
			}
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING %s, %s, %s
		`,
			schema.CoreEvent.Table, schema.CoreEvent.AccountID, schema.CoreEvent.EventType,
			schema.CoreEvent.EventDate, schema.CoreEvent.Place, schema.CoreEvent.Description,
			schema.CoreEvent.CreatedByID, schema.CoreEvent.CreatedAt, schema.CoreEvent.UpdatedAt,
			schema.CoreEvent.ID, schema.CoreEvent.CreatedAt, schema.CoreEvent.UpdatedAt,
		)
		err := tx.QueryRow(ctx, query,
			e.AccountID, e.EventType, e.EventDate, e.Place, e.Description, e.CreatedByID,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_event")
		}

		for _, participant := range e.Participants {
			if err := repository.insertParticipant(ctx, tx, e.AccountID, e.ID, participant, authorID); err != nil {
				return err
			}
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  e.AccountID,
			EntityType: entity.KindEvent,
			EntityID:   e.ID,
			AuthorID:   authorID,
			Action:     revision.ActionCreate,
			After:      e.Snapshot(),
		})
	})
}

func (repository *PostgresRepository) insertParticipant(ctx context.Context, tx pgx.Tx, accountID, eventID int64, participant Participant, authorID int64) error {
	ok, err := entity.ExistsLive(ctx, tx, accountID, entity.Ref{Kind: entity.KindPerson, ID: participant.PersonID})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Person")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, NOW())`,
		schema.CoreEventPerson.Table, schema.CoreEventPerson.AccountID, schema.CoreEventPerson.EventID,
		schema.CoreEventPerson.PersonID, schema.CoreEventPerson.Role, schema.CoreEventPerson.CreatedAt)
	if _, err := tx.Exec(ctx, query, accountID, eventID, participant.PersonID, participant.Role); err != nil {
		return dberr.Wrap(err, "add_participant")
	}

	return repository.revisions.Append(ctx, tx, &revision.Revision{
		AccountID:  accountID,
		EntityType: entity.KindEvent,
		EntityID:   eventID,
		AuthorID:   authorID,
		Action:     revision.ActionLink,
		After:      participantFields(participant),
	})
}

// participantFields projects a participant row for the ledger.
func participantFields(participant Participant) revision.Fields {
	return revision.Fields{
		FieldPersonID: participant.PersonID,
		FieldRole:     participant.Role,
	}
}

func (repository *PostgresRepository) UpdateEvent(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Event, error) {
	var updated *Event

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := `SELECT ` + eventColumns("") +
			fmt.Sprintf(`, %s FROM %s WHERE %s = $1 AND %s = $2 FOR UPDATE`,
				schema.CoreEvent.DeletedAt, schema.CoreEvent.Table, schema.CoreEvent.ID, schema.CoreEvent.AccountID)

		e := &Event{}
		err := tx.QueryRow(ctx, query, id, accountID).Scan(
			&e.ID, &e.AccountID, &e.EventType, &e.EventDate, &e.Place,
			&e.Description, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
		)
		if err != nil {
			return dberr.Wrap(err, "lock_event")
		}
		if e.DeletedAt != nil {
			return apperr.Conflict("Event was deleted by a concurrent request")
		}

		before := e.Snapshot()
		patch.Apply(e)
		changedBefore, changedAfter := revision.Diff(before, e.Snapshot())
		if changedBefore == nil {
			updated = e
			return nil
		}

		update := fmt.Sprintf(`
			UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
			WHERE %s = $1
			RETURNING %s
		`,
			schema.CoreEvent.Table, schema.CoreEvent.EventType, schema.CoreEvent.EventDate,
			schema.CoreEvent.Place, schema.CoreEvent.Description, schema.CoreEvent.UpdatedAt,
			schema.CoreEvent.ID, schema.CoreEvent.UpdatedAt,
		)
		if err := tx.QueryRow(ctx, update, e.ID, e.EventType, e.EventDate, e.Place, e.Description).Scan(&e.UpdatedAt); err != nil {
			return dberr.Wrap(err, "update_event")
		}

		if err := repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindEvent,
			EntityID:   e.ID,
			AuthorID:   authorID,
			Action:     revision.ActionUpdate,
			Before:     changedBefore,
			After:      changedAfter,
		}); err != nil {
			return err
		}

		updated = e
		return nil
	})

	return updated, err
}

func (repository *PostgresRepository) SoftDeleteEvent(ctx context.Context, accountID, id, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.CoreEvent.AccountID, schema.CoreEvent.DeletedAt, schema.CoreEvent.Table, schema.CoreEvent.ID)

		var owner int64
		var deletedAt *time.Time
		if err := tx.QueryRow(ctx, query, id).Scan(&owner, &deletedAt); err != nil {
			return dberr.Wrap(err, "lock_event")
		}
		if owner != accountID {
			return apperr.Forbidden("Event belongs to another account")
		}
		if deletedAt != nil {
			return apperr.NotFound("Event")
		}

		update := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 RETURNING %s`,
			schema.CoreEvent.Table, schema.CoreEvent.DeletedAt, schema.CoreEvent.UpdatedAt,
			schema.CoreEvent.ID, schema.CoreEvent.DeletedAt)

		var stamped time.Time
		if err := tx.QueryRow(ctx, update, id).Scan(&stamped); err != nil {
			return dberr.Wrap(err, "soft_delete_event")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindEvent,
			EntityID:   id,
			AuthorID:   authorID,
			Action:     revision.ActionDelete,
			After:      revision.Fields{"deleted_at": stamped.UTC().Format(time.RFC3339)},
		})
	})
}

func (repository *PostgresRepository) AddParticipant(ctx context.Context, accountID, eventID int64, participant Participant, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		ok, err := entity.ExistsLive(ctx, tx, accountID, entity.Ref{Kind: entity.KindEvent, ID: eventID})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Event")
		}
		return repository.insertParticipant(ctx, tx, accountID, eventID, participant, authorID)
	})
}

func (repository *PostgresRepository) RemoveParticipant(ctx context.Context, accountID, eventID, personID, authorID int64) error {
	return postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 RETURNING %s`,
			schema.CoreEventPerson.Table, schema.CoreEventPerson.AccountID,
			schema.CoreEventPerson.EventID, schema.CoreEventPerson.PersonID,
			schema.CoreEventPerson.Role)

		var role string
		if err := tx.QueryRow(ctx, query, accountID, eventID, personID).Scan(&role); err != nil {
			return dberr.Wrap(err, "remove_participant")
		}

		return repository.revisions.Append(ctx, tx, &revision.Revision{
			AccountID:  accountID,
			EntityType: entity.KindEvent,
			EntityID:   eventID,
			AuthorID:   authorID,
			Action:     revision.ActionUnlink,
			Before:     participantFields(Participant{PersonID: personID, Role: role}),
		})
	})
}

func itos(i int) string {
	return strconv.Itoa(i)
}
