package tree

import (
	"context"
	"log/slog"
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

func (service *Service) Ancestors(ctx context.Context, accountID, personID int64, maxDepth int) ([]Lineage, error) {
	snapshot, err := service.repo.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Ancestors(snapshot, personID, maxDepth)
}

func (service *Service) Descendants(ctx context.Context, accountID, personID int64, maxDepth int) ([]Lineage, error) {
	snapshot, err := service.repo.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Descendants(snapshot, personID, maxDepth)
}

func (service *Service) ExportGEDCOM(ctx context.Context, accountID int64) ([]byte, error) {
	snapshot, err := service.repo.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("export_rendered",
		slog.String("format", "gedcom"),
		slog.Int("people", len(snapshot.People)),
		slog.Int("relationships", len(snapshot.Edges)),
	)
	return RenderGEDCOM(snapshot), nil
}

func (service *Service) ExportJSON(ctx context.Context, accountID int64) ([]byte, error) {
	snapshot, err := service.repo.LoadSnapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("export_rendered",
		slog.String("format", "json"),
		slog.Int("people", len(snapshot.People)),
		slog.Int("relationships", len(snapshot.Edges)),
	)
	return RenderJSON(snapshot)
}
