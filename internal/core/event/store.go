package event

import "context"

type Repository interface {
	ListEvents(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Event, int, error)
	GetEvent(ctx context.Context, accountID, id int64) (*Event, error)
	CreateEvent(ctx context.Context, e *Event, authorID int64) error
	UpdateEvent(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Event, error)
	SoftDeleteEvent(ctx context.Context, accountID, id, authorID int64) error
	AddParticipant(ctx context.Context, accountID, eventID int64, participant Participant, authorID int64) error
	RemoveParticipant(ctx context.Context, accountID, eventID, personID, authorID int64) error
}
