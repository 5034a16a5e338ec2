// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

/*
Package account implements the tenant boundary of the platform.

An Account owns every genealogy record it creates: people, relationships,
events, media, sources, and the revision ledger rows describing them. Data is
never merged or shared across accounts; every engine operation is scoped to
the acting account id carried in verified JWT claims.

# Architecture

  - Service: Registration, login, refresh-token rotation, logout.
  - Repository: Postgres for accounts, Redis for refresh sessions.
  - Security: bcrypt password hashes and RSA-signed access tokens via
    the platform sec package.
*/
package account

import (
	"time"

	"github.com/phamducminh/rootline/internal/platform/sec"
)

// Account represents a registered tenant of the platform.
type Account struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"` // Never serialized.
	DisplayName  string          `json:"display_name"`
	Role         sec.AccountRole `json:"role"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Session is an active refresh-token session. It lives in Redis, keyed by
// the SHA-256 hash of the refresh token, and expires with the token.
type Session struct {
	AccountID int64     `json:"account_id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshTokenLength is the entropy, in bytes, of a generated refresh token.
const RefreshTokenLength = 32

// Field names used in validation errors and response payloads.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldAccount     = "account"
)
