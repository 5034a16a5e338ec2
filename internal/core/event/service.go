package event

import (
	"context"
	"log/slog"

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

func (service *Service) ListEvents(ctx context.Context, accountID int64, filter Filter, limit, offset int) ([]*Event, int, error) {
	return service.repo.ListEvents(ctx, accountID, filter, limit, offset)
}

func (service *Service) GetEvent(ctx context.Context, accountID, id int64) (*Event, error) {
	return service.repo.GetEvent(ctx, accountID, id)
}

func (service *Service) CreateEvent(ctx context.Context, accountID, authorID int64, e *Event) error {
	e.AccountID = accountID

	validator := &validate.Validator{}
	validator.Required(FieldEventType, e.EventType).MaxLen(FieldEventType, e.EventType, 100)
	if e.EventDate != nil {
		validator.Date(FieldEventDate, *e.EventDate)
	}
	for _, participant := range e.Participants {
		validator.PositiveID(FieldPersonID, participant.PersonID)
		validator.MaxLen(FieldRole, participant.Role, 100)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateEvent(ctx, e, authorID); err != nil {
		return err
	}

	service.logger.Info("event_created",
		slog.Int64("event_id", e.ID),
		slog.String("event_type", e.EventType),
	)
	return nil
}

func (service *Service) UpdateEvent(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Event, error) {
	validator := &validate.Validator{}
	if patch.EventType != nil {
		validator.Required(FieldEventType, *patch.EventType).MaxLen(FieldEventType, *patch.EventType, 100)
	}
	if patch.EventDate != nil && *patch.EventDate != "" {
		validator.Date(FieldEventDate, *patch.EventDate)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated, err := service.repo.UpdateEvent(ctx, accountID, id, patch, authorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("event_updated", slog.Int64("event_id", id))
	return updated, nil
}

func (service *Service) SoftDeleteEvent(ctx context.Context, accountID, id, authorID int64) error {
	if err := service.repo.SoftDeleteEvent(ctx, accountID, id, authorID); err != nil {
		return err
	}

	service.logger.Warn("event_deleted", slog.Int64("event_id", id))
	return nil
}

func (service *Service) AddParticipant(ctx context.Context, accountID, eventID int64, participant Participant, authorID int64) error {
	validator := &validate.Validator{}
	validator.PositiveID(FieldPersonID, participant.PersonID)
	validator.MaxLen(FieldRole, participant.Role, 100)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.AddParticipant(ctx, accountID, eventID, participant, authorID); err != nil {
		return err
	}

	service.logger.Info("event_participant_added",
		slog.Int64("event_id", eventID),
		slog.Int64("person_id", participant.PersonID),
	)
	return nil
}

func (service *Service) RemoveParticipant(ctx context.Context, accountID, eventID, personID, authorID int64) error {
	return service.repo.RemoveParticipant(ctx, accountID, eventID, personID, authorID)
}
