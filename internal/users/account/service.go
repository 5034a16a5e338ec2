// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/constants"
	"github.com/phamducminh/rootline/internal/platform/sec"
)

// TokenProvider defines the contract for minting signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(accountID int64, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements account lifecycle and session use cases.
type Service struct {
	accounts Repository
	sessions SessionRepository
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(accounts Repository, sessions SessionRepository, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, sessions: sessions, tokens: tokens, logger: logger}
}

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register hashes the password and persists a new account.
// A duplicate email is a Conflict error.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	if _, err := service.accounts.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	created := &Account{
		Email:        input.Email,
		PasswordHash: passwordHash,
		DisplayName:  input.DisplayName,
		Role:         sec.RoleMember,
	}
	if err := service.accounts.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("account_service_register_failed: %w", err)
	}

	service.logger.Info("account_registered", slog.Int64("account_id", created.ID))
	return created, nil
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is a successfully established session: a short-lived signed
// access token plus the refresh token whose hash tracks the session in Redis.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Account               *Account
}

// Login verifies credentials and issues a fresh token pair.
//
// Lookup and password failures collapse into one generic Unauthorized error
// so responses never reveal whether an email is registered.
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	acct, err := service.accounts.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(input.Password, acct.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issueSession(ctx, acct, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	service.logger.Info("account_logged_in", slog.Int64("account_id", acct.ID))
	return session, nil
}

// Refresh rotates a refresh token: the presented token is revoked before the
// replacement pair is issued, so a replayed token dies on first reuse.
func (service *Service) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)

	session, err := service.sessions.Find(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if err := service.sessions.Delete(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("account_service_refresh_revoke_failed: %w", err)
	}

	acct, err := service.accounts.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}

	rotated, err := service.issueSession(ctx, acct, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	service.logger.Info("session_refreshed", slog.Int64("account_id", acct.ID))
	return rotated, nil
}

// Logout revokes the session behind refreshToken. Unknown tokens are treated
// as already logged out.
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := sec.HashToken(refreshToken)

	if _, err := service.sessions.Find(ctx, tokenHash); err != nil {
		return nil
	}

	if err := service.sessions.Delete(ctx, tokenHash); err != nil {
		return fmt.Errorf("account_service_logout_failed: %w", err)
	}
	return nil
}

// Me returns the account profile behind the authenticated account id.
func (service *Service) Me(ctx context.Context, accountID int64) (*Account, error) {
	return service.accounts.FindByID(ctx, accountID)
}

func (service *Service) issueSession(ctx context.Context, acct *Account, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(acct.ID, acct.Email, string(acct.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("account_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("account_service_refresh_token_failed: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(constants.RefreshTokenTTL)
	session := &Session{
		AccountID: acct.ID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}

	if err := service.sessions.Create(ctx, sec.HashToken(refreshToken), session); err != nil {
		return nil, fmt.Errorf("account_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               acct,
	}, nil
}
