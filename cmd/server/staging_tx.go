package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/tx"
)

const defaultStagingTxTimeout = 5 * time.Second

// stagingPostgresTx is the transactional boundary for staging resolution.
// The open *sql.Tx travels in the context so every store call inside fn
// joins the same transaction.
type stagingPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newStagingPostgresTx(db *sql.DB) *stagingPostgresTx {
	return &stagingPostgresTx{db: db}
}

func (t *stagingPostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultStagingTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	return sqlTx.Commit()
}
