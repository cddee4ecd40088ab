// Package worker ships audit events from the postgres outbox to Kafka.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Publisher is the downstream sink, normally Kafka.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Worker polls the outbox table and publishes unshipped rows. Rows are
// locked with SKIP LOCKED so multiple instances never double-publish within
// one polling cycle; delivery remains at-least-once across restarts.
type Worker struct {
	db        *sql.DB
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func New(db *sql.DB, publisher Publisher, logger *slog.Logger) *Worker {
	return &Worker{
		db:        db,
		publisher: publisher,
		logger:    logger,
		interval:  time.Second,
		batchSize: 100,
	}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainBatch(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, subject, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, w.batchSize)
	if err != nil {
		return fmt.Errorf("select outbox batch: %w", err)
	}

	type outboxRow struct {
		id      string
		subject string
		payload []byte
	}
	var batch []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.subject, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}

	for _, row := range batch {
		if err := w.publisher.Publish(ctx, []byte(row.subject), row.payload); err != nil {
			// Leave the row unpublished; the next cycle retries it.
			return fmt.Errorf("publish outbox row %s: %w", row.id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE audit_outbox SET published_at = $2 WHERE id = $1`,
			row.id, time.Now()); err != nil {
			return fmt.Errorf("mark outbox row %s published: %w", row.id, err)
		}
	}
	return tx.Commit()
}
