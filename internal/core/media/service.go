package media

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

func (service *Service) ListMedia(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Media, int, error) {
	if filter.Target != nil {
		if err := filter.Target.Validate(); err != nil {
			return nil, 0, err
		}
	}
	return service.repo.ListMedia(ctx, accountID, filter, limit, offset)
}

func (service *Service) GetMedia(ctx context.Context, accountID, id int64) (*Media, error) {
	return service.repo.GetMedia(ctx, accountID, id)
}

func (service *Service) CreateMedia(ctx context.Context, accountID, authorID int64, m *Media) error {
	m.AccountID = accountID

	validator := &validate.Validator{}
	validator.OneOf(FieldMediaType, m.MediaType, TypePhoto, TypeDocument, TypeAudio, TypeVideo)
	validator.Required(FieldURL, m.URL).URL(FieldURL, m.URL)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateMedia(ctx, m, authorID); err != nil {
		return err
	}

	service.logger.Info("media_created",
		slog.Int64("media_id", m.ID),
		slog.String("media_type", m.MediaType),
	)
	return nil
}

func (service *Service) UpdateMedia(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Media, error) {
	validator := &validate.Validator{}
	if patch.MediaType != nil {
		validator.OneOf(FieldMediaType, *patch.MediaType, TypePhoto, TypeDocument, TypeAudio, TypeVideo)
	}
	if patch.URL != nil {
		validator.Required(FieldURL, *patch.URL).URL(FieldURL, *patch.URL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateMedia(ctx, accountID, id, patch, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("media_updated", slog.Int64("media_id", id))
	return updated, nil
}

func (service *Service) SoftDeleteMedia(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.SoftDeleteMedia(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("media_deleted", slog.Int64("media_id", id))
	return nil
}

func (service *Service) LinkMedia(ctx context.Context, accountID, mediaID int64, target entity.Ref, authorID int64) (*Link, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	link, err := service.repo.LinkMedia(ctx, accountID, mediaID, target, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("media_linked",
		slog.Int64("media_id", mediaID),
		slog.String("entity_type", string(target.Kind)),
		slog.Int64("entity_id", target.ID),
	)
	return link, nil
}

func (service *Service) UnlinkMedia(ctx context.Context, accountID, linkID, authorID int64) error {
	return service.repo.UnlinkMedia(ctx, accountID, linkID, authorID)
}

func (service *Service) ListLinks(ctx context.Context, accountID, mediaID int64) ([]Link, error) {
	return service.repo.ListLinks(ctx, accountID, mediaID)
}
