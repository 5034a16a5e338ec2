package relationship

import "context"

type Repository interface {
	ListRelationships(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Relationship, int, error)
	GetRelationship(ctx context.Context, accountID, id int64) (*Relationship, error)
	CreateRelationship(ctx context.Context, r *Relationship, authorID int64) error
	UpdateRelationship(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Relationship, error)
	SoftDeleteRelationship(ctx context.Context, accountID, id, authorID int64) error
}
