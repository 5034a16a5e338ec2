package tree

import "context"

type Repository interface {
	LoadSnapshot(ctx context.Context, accountID int64) (*Snapshot, error)
}
