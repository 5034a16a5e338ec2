// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamducminh/rootline/internal/platform/apperr"
	"github.com/phamducminh/rootline/internal/platform/sec"
)

type fakeAccounts struct {
	nextID   int64
	accounts map[int64]*Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{nextID: 1, accounts: map[int64]*Account{}}
}

func (f *fakeAccounts) FindByID(_ context.Context, id int64) (*Account, error) {
	if acct, ok := f.accounts[id]; ok {
		return acct, nil
	}
	return nil, apperr.NotFound("Account")
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	for _, acct := range f.accounts {
		if acct.Email == email {
			return acct, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (f *fakeAccounts) Create(_ context.Context, acct *Account) error {
	acct.ID = f.nextID
	f.nextID++
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt
	f.accounts[acct.ID] = acct
	return nil
}

type fakeSessions struct {
	sessions map[string]*Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*Session{}}
}

func (f *fakeSessions) Create(_ context.Context, tokenHash string, session *Session) error {
	f.sessions[tokenHash] = session
	return nil
}

func (f *fakeSessions) Find(_ context.Context, tokenHash string) (*Session, error) {
	if session, ok := f.sessions[tokenHash]; ok {
		return session, nil
	}
	return nil, apperr.Unauthorized("Invalid or expired refresh token")
}

func (f *fakeSessions) Delete(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(accountID int64, email, role string, _ time.Duration) (string, error) {
	return fmt.Sprintf("jwt-%d-%s-%s", accountID, email, role), nil
}

func newTestService() (*Service, *fakeAccounts, *fakeSessions) {
	accounts := newFakeAccounts()
	sessions := newFakeSessions()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(accounts, sessions, fakeTokens{}, logger), accounts, sessions
}

func registered(t *testing.T, service *Service) *Account {
	t.Helper()
	acct, err := service.Register(context.Background(), RegisterInput{
		Email:       "anna@example.com",
		Password:    "correct-horse",
		DisplayName: "Anna",
	})
	require.NoError(t, err)
	return acct
}

func TestRegisterHashesPassword(t *testing.T) {
	service, accounts, _ := newTestService()
	acct := registered(t, service)

	stored := accounts.accounts[acct.ID]
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct-horse", stored.PasswordHash))
	assert.Equal(t, sec.RoleMember, stored.Role)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	service, _, _ := newTestService()
	registered(t, service)

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "anna@example.com",
		Password: "another-pass",
	})
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	service, _, sessions := newTestService()
	registered(t, service)

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "anna@example.com",
		Password: "wrong",
	})
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
	assert.Empty(t, sessions.sessions)
}

func TestLoginUnknownEmailUnauthorized(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestLoginCreatesSession(t *testing.T) {
	service, _, sessions := newTestService()
	acct := registered(t, service)

	login, err := service.Login(context.Background(), LoginInput{
		Email:     "anna@example.com",
		Password:  "correct-horse",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)

	stored, err := sessions.Find(context.Background(), sec.HashToken(login.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, acct.ID, stored.AccountID)
	assert.Equal(t, "test-agent", stored.UserAgent)
}

func TestRefreshRotatesToken(t *testing.T) {
	service, _, _ := newTestService()
	registered(t, service)

	login, err := service.Login(context.Background(), LoginInput{
		Email:    "anna@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), login.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The presented token is revoked on rotation; replaying it fails.
	_, err = service.Refresh(context.Background(), login.RefreshToken, "", "")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	// The rotated token stays usable.
	_, err = service.Refresh(context.Background(), rotated.RefreshToken, "", "")
	assert.NoError(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	service, _, sessions := newTestService()
	registered(t, service)

	login, err := service.Login(context.Background(), LoginInput{
		Email:    "anna@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), login.RefreshToken))
	assert.Empty(t, sessions.sessions)

	// A second logout with the same token is not an error.
	assert.NoError(t, service.Logout(context.Background(), login.RefreshToken))

	_, err = service.Refresh(context.Background(), login.RefreshToken, "", "")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestMeReturnsProfile(t *testing.T) {
	service, _, _ := newTestService()
	acct := registered(t, service)

	profile, err := service.Me(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.DisplayName)

	_, err = service.Me(context.Background(), 999)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}
