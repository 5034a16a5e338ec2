// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamducminh/rootline/internal/platform/ctxutil"
	"github.com/phamducminh/rootline/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Account verifies that AuthClaims can be stored in context.
*/
func TestContext_Account(t *testing.T) {
	ctx := context.Background()
	claims := &sec.AuthClaims{
		AccountID: 42,
		Role:      "member",
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetAccount(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithAccount(ctx, claims)
	retrieved := ctxutil.GetAccount(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, int64(42), retrieved.AccountID)
	assert.Equal(t, "member", retrieved.Role)
}
