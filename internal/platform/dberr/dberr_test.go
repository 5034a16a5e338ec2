// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package dberr

import (
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/phamducminh/rootline/internal/platform/apperr"
)

// Wrap runs inside the store callback, before the transaction runner decides
// on a retry. Classifying a connection fault must not strip its retryability.
func TestWrapKeepsConnectionFaultRetryable(t *testing.T) {
	cause := &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}

	wrapped := Wrap(cause, "list_people")
	assert.True(t, apperr.IsCode(wrapped, "STORAGE_UNAVAILABLE"))
	assert.True(t, IsRetryable(cause))
	assert.True(t, IsRetryable(wrapped))
}

func TestIsRetryableRejectsDomainErrors(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(apperr.NotFound("Person")))
	assert.False(t, IsRetryable(apperr.Conflict("Person was deleted by a concurrent request")))
	assert.False(t, IsRetryable(Wrap(pgx.ErrNoRows, "get_person")))
}

func TestIsRetryablePgCodes(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "08006"}), "connection failure")
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "57P01"}), "admin shutdown")
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}), "unique violation")
}

func TestWrapMapsNoRows(t *testing.T) {
	assert.True(t, apperr.IsCode(Wrap(pgx.ErrNoRows, "get_person"), "NOT_FOUND"))
}
