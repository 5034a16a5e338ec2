// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package account

import "context"

// Repository defines the data access contract for accounts.
type Repository interface {
	// FindByID returns the account with the given id, or a NotFound error.
	FindByID(ctx context.Context, id int64) (*Account, error)

	// FindByEmail returns the account registered under email, or a NotFound
	// error.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Create persists a new account. The assigned id and timestamps are
	// written back into the struct.
	Create(ctx context.Context, account *Account) error
}

// SessionRepository defines the contract for volatile refresh sessions.
//
// Sessions are addressed by the hash of their refresh token; rotation is
// delete-old, create-new under the caller's control.
type SessionRepository interface {
	// Create stores the session under tokenHash until it expires.
	Create(ctx context.Context, tokenHash string, session *Session) error

	// Find returns the live session stored under tokenHash. An absent or
	// expired session is an Unauthorized error.
	Find(ctx context.Context, tokenHash string) (*Session, error)

	// Delete removes the session stored under tokenHash, if any.
	Delete(ctx context.Context, tokenHash string) error
}
