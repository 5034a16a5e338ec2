package person

import (
	"context"
	"log/slog"

	"github.com/phamducminh/rootline/internal/core/entity"
	"github.com/phamducminh/rootline/internal/platform/validate"
	"github.com/phamducminh/rootline/internal/revision"
)

type Service struct {
	repo      Repository
	revisions revision.Repository
	logger    *slog.Logger
}

func NewService(repo Repository, revisions revision.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		revisions: revisions,
		logger:    logger,
	}
}

func (service *Service) ListPeople(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Person, int, error) {
	return service.repo.ListPeople(ctx, accountID, filter, limit, offset)
}

func (service *Service) GetPerson(ctx context.Context, accountID, id int64) (*Person, error) {
	return service.repo.GetPerson(ctx, accountID, id, false)
}

func (service *Service) CreatePerson(ctx context.Context, accountID, authorID int64, p *Person) error {
	p.AccountID = accountID
	if p.Privacy == "" {
		p.Privacy = PrivacyPrivate
	}

	if err := validatePerson(p); err != nil {
		return err
	}

	if err := service.repo.CreatePerson(ctx, p, authorID); err != nil {
		return err
	}

	service.logger.Info("person_created",
		slog.Int64("person_id", p.ID),
		slog.Int64("account_id", accountID),
	)
	return nil
}

func (service *Service) UpdatePerson(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Person, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdatePerson(ctx, accountID, id, patch, authorID)
	if err != nil {
		return nil, err
	}

	// Date ordering can only be checked against the merged record.
	validator := &validate.Validator{}
	validator.DateOrder(FieldDeathDate, updated.BirthDate, updated.DeathDate)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	service.logger.Info("person_updated", slog.Int64("person_id", id))
	return updated, nil
}

func (service *Service) SoftDeletePerson(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.SoftDeletePerson(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("person_deleted", slog.Int64("person_id", id))
	return nil
}

func (service *Service) HardPurgePerson(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.HardPurgePerson(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("person_purged",
		slog.Int64("person_id", id),
		slog.Int64("author_id", authorID),
	)
	return nil
}

// History returns the person's full ledger trail, including revisions of
// tombstoned and purged records.
func (service *Service) History(ctx context.Context, accountID, id int64) ([]revision.Revision, error) {
	return service.revisions.ListForEntity(ctx, accountID, entity.KindPerson, id)
}

func validatePerson(p *Person) error {
	validator := &validate.Validator{}

	validator.Custom(FieldGivenName, p.GivenName == "" && p.FamilyName == "",
		"At least one of given_name or family_name is required")
	validator.MaxLen(FieldGivenName, p.GivenName, 200)
	validator.MaxLen(FieldFamilyName, p.FamilyName, 200)
	validator.OneOf(FieldPrivacy, p.Privacy, PrivacyPublic, PrivacyPrivate, PrivacyRestricted)

	if p.BirthDate != nil {
		validator.Date(FieldBirthDate, *p.BirthDate)
	}
	if p.DeathDate != nil {
		validator.Date(FieldDeathDate, *p.DeathDate)
	}
	validator.DateOrder(FieldDeathDate, p.BirthDate, p.DeathDate)

	return validator.Err()
}

func validatePatch(patch Patch) error {
	validator := &validate.Validator{}

	if patch.GivenName != nil {
		validator.MaxLen(FieldGivenName, *patch.GivenName, 200)
	}
	if patch.FamilyName != nil {
		validator.MaxLen(FieldFamilyName, *patch.FamilyName, 200)
	}
	if patch.Privacy != nil {
		validator.OneOf(FieldPrivacy, *patch.Privacy, PrivacyPublic, PrivacyPrivate, PrivacyRestricted)
	}
	if patch.BirthDate != nil && *patch.BirthDate != "" {
		validator.Date(FieldBirthDate, *patch.BirthDate)
	}
	if patch.DeathDate != nil && *patch.DeathDate != "" {
		validator.Date(FieldDeathDate, *patch.DeathDate)
	}

	return validator.Err()
}
