package media

import (
	"context"

	"github.com/phamducminh/rootline/internal/core/entity"
)

type Repository interface {
	ListMedia(ctx context.Context, accountID int64, f Filter, limit, offset int) ([]*Media, int, error)
	GetMedia(ctx context.Context, accountID, id int64) (*Media, error)
	CreateMedia(ctx context.Context, m *Media, authorID int64) error
	UpdateMedia(ctx context.Context, accountID, id int64, patch Patch, authorID int64) (*Media, error)
	SoftDeleteMedia(ctx context.Context, accountID, id, authorID int64) error
	LinkMedia(ctx context.Context, accountID, mediaID int64, target entity.Ref, authorID int64) (*Link, error)
	UnlinkMedia(ctx context.Context, accountID, linkID, authorID int64) error
	ListLinks(ctx context.Context, accountID, mediaID int64) ([]Link, error)
}
