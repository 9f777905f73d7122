package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// ReadCommitted runs fn in a read-committed transaction. Row locks taken by
// conditional updates are enough for per-key admission, so nothing stronger
// is requested.
func ReadCommitted(ctx context.Context, b Beginner, fn func(pgx.Tx) error) error {
	return InTx(ctx, b, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// InTx runs fn in a transaction started with opts. Any error from fn, or a
// failed commit, leaves the transaction rolled back.
func InTx(ctx context.Context, b Beginner, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin %s tx: %w", isoName(opts.IsoLevel), err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit: %w", err)
	}
	committed = true
	return nil
}

func isoName(level pgx.TxIsoLevel) string {
	if level == "" {
		return "default"
	}
	return string(level)
}
