package revision

import (
	"context"
	"log/slog"
	"time"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListRevisions(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Revision, int, error) {
	if filter.EntityType != "" && !filter.EntityType.Valid() {
		return nil, 0, apperr.ValidationError("Unknown entity kind", apperr.FieldError{
			Field:   FieldEntityType,
			Message: "Must be one of: person, relationship, event, media, source",
		})
	}
	return service.repo.ListRevisions(ctx, accountID, filter, limit, offset)
}

/*
Reconstruct rebuilds one record's state at a point in time from the ledger.

When at is nil, the state reflects every committed revision, i.e. the
record as it is now (or was, right before a purge).
*/
func (service *Service) Reconstruct(ctx context.Context, accountID int64, kind entity.Kind, entityID int64, at *time.Time) (State, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldEntityType, !kind.Valid(), "Must be a known entity kind")
	validator.PositiveID(FieldEntityID, entityID)
	if err := validator.Err(); err != nil {
		return State{}, err
	}

	revisions, err := service.repo.ListForEntity(ctx, accountID, kind, entityID)
	if err != nil {
		return State{}, err
	}
	if len(revisions) == 0 {
		return State{}, apperr.NotFound("Revision history")
	}

	state := Replay(revisions, at)
	service.logger.Info("revision_replayed",
		slog.String("entity_type", string(kind)),
		slog.Int64("entity_id", entityID),
		slog.Int("revisions", len(revisions)),
	)
	return state, nil
}
