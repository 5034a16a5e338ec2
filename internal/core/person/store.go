package person

import "context"

type Repository interface {
	ListPeople(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Person, int, error)
	GetPerson(ctx context.Context, accountID, id int64, includeDeleted bool) (*Person, error)
	CreatePerson(ctx context.Context, p *Person, authorID int64) error
	UpdatePerson(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Person, error)
	SoftDeletePerson(ctx context.Context, accountID, id, authorID int64) error
	HardPurgePerson(ctx context.Context, accountID, id, authorID int64) error
}
