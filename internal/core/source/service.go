package source

import (
	"context"
	"log/slog"

	"github.com/phamducminh/rootline/internal/core/entity"
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

func (service *Service) ListSources(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Source, int, error) {
	if filter.Target != nil {
		if err := filter.Target.Validate(); err != nil {
			return nil, 0, err
		}
	}
	return service.repo.ListSources(ctx, accountID, filter, limit, offset)
}

func (service *Service) GetSource(ctx context.Context, accountID, id int64) (*Source, error) {
	return service.repo.GetSource(ctx, accountID, id)
}

func (service *Service) CreateSource(ctx context.Context, accountID, authorID int64, s *Source) error {
	s.AccountID = accountID

	validator := &validate.Validator{}
	validator.Required(FieldTitle, s.Title).MaxLen(FieldTitle, s.Title, 300)
	if s.URL != nil {
		validator.URL(FieldURL, *s.URL)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateSource(ctx, s, authorID); err != nil {
		return err
	}

	service.logger.Info("source_created", slog.Int64("source_id", s.ID))
	return nil
}

func (service *Service) UpdateSource(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Source, error) {
	validator := &validate.Validator{}
	if patch.Title != nil {
		validator.Required(FieldTitle, *patch.Title).MaxLen(FieldTitle, *patch.Title, 300)
	}
	if patch.URL != nil && *patch.URL != "" {
		validator.URL(FieldURL, *patch.URL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateSource(ctx, accountID, id, patch, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("source_updated", slog.Int64("source_id", id))
	return updated, nil
}

func (service *Service) SoftDeleteSource(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.SoftDeleteSource(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("source_deleted", slog.Int64("source_id", id))
	return nil
}

func (service *Service) LinkSource(ctx context.Context, accountID, sourceID int64, target entity.Ref, authorID int64) (*Link, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	link, err := service.repo.LinkSource(ctx, accountID, sourceID, target, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("source_linked",
		slog.Int64("source_id", sourceID),
		slog.String("entity_type", string(target.Kind)),
		slog.Int64("entity_id", target.ID),
	)
	return link, nil
}

func (service *Service) UnlinkSource(ctx context.Context, accountID, linkID, authorID int64) error {
	return service.repo.UnlinkSource(ctx, accountID, linkID, authorID)
}

func (service *Service) ListLinks(ctx context.Context, accountID, sourceID int64) ([]Link, error) {
	return service.repo.ListLinks(ctx, accountID, sourceID)
}
