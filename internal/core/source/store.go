package source

import (
	"context"

	"github.com/phamducminh/rootline/internal/core/entity"
)

type Repository interface {
	ListSources(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Source, int, error)
	GetSource(ctx context.Context, accountID, id int64) (*Source, error)
	CreateSource(ctx context.Context, s *Source, authorID int64) error
	UpdateSource(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Source, error)
	SoftDeleteSource(ctx context.Context, accountID, id, authorID int64) error
	LinkSource(ctx context.Context, accountID, sourceID int64, target entity.Ref, authorID int64) (*Link, error)
	UnlinkSource(ctx context.Context, accountID, linkID, authorID int64) error
	ListLinks(ctx context.Context, accountID, sourceID int64) ([]Link, error)
}
