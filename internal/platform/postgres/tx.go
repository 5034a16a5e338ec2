// Copyright (c) 2026 Rootline. All rights reserved.
// Author: pham.ducminh.dev@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phamducminh/rootline/internal/platform/dberr"
)

// maxAttempts bounds the local retry of connection-class faults. Domain
// errors are never retried.
const maxAttempts = 3

// Queryer is the subset of pgx behavior shared by [*pgxpool.Pool] and
// [pgx.Tx]. Repositories accept it so the same statement helpers run both
// standalone and inside a unit of work (most importantly, the revision
// append runs on the mutation's own transaction).
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx runs fn inside a transaction. Either every statement issued through
// the transaction commits, or the whole unit rolls back — a mutation can
// never land without its revision, nor a revision without its mutation.
//
// Connection-class faults are retried with fresh transactions up to
// maxAttempts before surfacing as STORAGE_UNAVAILABLE.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := runTx(ctx, pool, fn)
		if err == nil {
			return nil
		}

		if !dberr.IsRetryable(err) {
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return dberr.Wrap(lastErr, "tx_retries_exhausted")
}

func runTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback is a no-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LockAccount takes the per-account advisory lock for the remainder of the
// transaction. Relationship mutations acquire it so the acyclicity
// check-then-insert sequence cannot race against another writer in the same
// account; writers in other accounts are unaffected.
func LockAccount(ctx context.Context, tx pgx.Tx, accountID int64) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, accountID); err != nil {
		return fmt.Errorf("postgres: account lock: %w", err)
	}
	return nil
}
