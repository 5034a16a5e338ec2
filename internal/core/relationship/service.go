package relationship

import (
	"context"
	"log/slog"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/validate"
)

/*
Service enforces the shape of relationship requests before the repository
runs the transactional graph checks.

The split matters: everything that needs only the request itself (types,
date formats, self-loops) fails here without touching the database; every
check that depends on other rows (endpoints, duplicates, cycles) runs inside
the repository's serialized transaction.
*/
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

func (service *Service) ListRelationships(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Relationship, int, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, validate.RequiredError(FieldType, "Must be one of: parent, spouse, sibling")
	}
	return service.repo.ListRelationships(ctx, accountID, filter, limit, offset)
}

func (service *Service) GetRelationship(ctx context.Context, accountID, id int64) (*Relationship, error) {
	return service.repo.GetRelationship(ctx, accountID, id)
}

func (service *Service) CreateRelationship(ctx context.Context, accountID, authorID int64, r *Relationship) error {
	r.AccountID = accountID

	validator := &validate.Validator{}
	validator.PositiveID(FieldPerson1ID, r.Person1ID)
	validator.PositiveID(FieldPerson2ID, r.Person2ID)
	validator.Custom(FieldType, !r.Type.Valid(), "Must be one of: parent, spouse, sibling")
	if r.StartDate != nil {
		validator.Date(FieldStartDate, *r.StartDate)
	}
	if r.EndDate != nil {
		validator.Date(FieldEndDate, *r.EndDate)
	}
	validator.DateOrder(FieldEndDate, r.StartDate, r.EndDate)
	if err := validator.Err(); err != nil {
		return err
	}

	if r.Person1ID == r.Person2ID {
		return apperr.InvalidRelationship("A person cannot be related to themselves")
	}

	if err := service.repo.CreateRelationship(ctx, r, authorID); err != nil {
		return err
	}

	service.logger.Info("relationship_created",
		slog.Int64("relationship_id", r.ID),
		slog.String("type", string(r.Type)),
		slog.Int64("person1_id", r.Person1ID),
		slog.Int64("person2_id", r.Person2ID),
	)
	return nil
}

func (service *Service) UpdateRelationship(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Relationship, error) {
	validator := &validate.Validator{}
	if patch.StartDate != nil && *patch.StartDate != "" {
		validator.Date(FieldStartDate, *patch.StartDate)
	}
	if patch.EndDate != nil && *patch.EndDate != "" {
		validator.Date(FieldEndDate, *patch.EndDate)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateRelationship(ctx, accountID, id, patch, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("relationship_updated", slog.Int64("relationship_id", id))
	return updated, nil
}

func (service *Service) SoftDeleteRelationship(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.SoftDeleteRelationship(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("relationship_deleted", slog.Int64("relationship_id", id))
	return nil
}
