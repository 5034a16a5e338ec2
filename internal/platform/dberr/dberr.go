// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phamducminh/rootline/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Domain errors raised inside a store callback pass through untouched.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Connection-class faults surface as STORAGE_UNAVAILABLE after the
	// store's bounded retry has given up. Everything the caller can't fix by
	// changing its input belongs here, never in the domain error kinds.
	if IsRetryable(err) {
		return apperr.StorageUnavailable(err)
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsRetryable reports whether err is a transient infrastructure fault worth a
// bounded local retry (dead connection, timeout, admin shutdown). Domain
// errors and constraint violations are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Wrap classifies connection faults as STORAGE_UNAVAILABLE inside the
	// store callback, before the transaction runner decides on a retry;
	// those stay retryable. Every other AppError is a domain outcome.
	if apperr.IsAppError(err) {
		return apperr.IsCode(err, "STORAGE_UNAVAILABLE")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions. 57P01: admin shutdown.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
		return pgErr.Code == "57P01"
	}

	return pgconn.SafeToRetry(err)
}
