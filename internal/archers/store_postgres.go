package archers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
	txcontext "quiverbook/pkg/platform/tx"
)

// PostgresStore persists archers. Pure I/O; validation belongs upstream.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, archer *Archer) error {
	query := `
		INSERT INTO archers (id, first_name, last_name, email, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		archer.ID.String(), archer.FirstName, archer.LastName, archer.Email, archer.JoinedAt)
	if err != nil {
		return fmt.Errorf("create archer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, archerID id.ArcherID) (*Archer, error) {
	query := `
		SELECT id, first_name, last_name, email, joined_at
		FROM archers
		WHERE id = $1
	`
	archer, err := scanArcher(s.q(ctx).QueryRowContext(ctx, query, archerID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find archer: %w", err)
	}
	return archer, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Archer, error) {
	query := `
		SELECT id, first_name, last_name, email, joined_at
		FROM archers
		ORDER BY last_name, first_name
	`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list archers: %w", err)
	}
	defer rows.Close()

	var out []*Archer
	for rows.Next() {
		archer, err := scanArcher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archer: %w", err)
		}
		out = append(out, archer)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, archerID id.ArcherID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM archers WHERE id = $1`, archerID.String())
	if err != nil {
		return fmt.Errorf("delete archer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete archer: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArcher(row rowScanner) (*Archer, error) {
	var archer Archer
	var rawID string
	if err := row.Scan(&rawID, &archer.FirstName, &archer.LastName, &archer.Email, &archer.JoinedAt); err != nil {
		return nil, err
	}
	parsed, err := id.ParseArcherID(rawID)
	if err != nil {
		return nil, err
	}
	archer.ID = parsed
	return &archer, nil
}
