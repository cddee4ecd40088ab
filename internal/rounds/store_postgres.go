package rounds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
	txcontext "quiverbook/pkg/platform/tx"
)

// PostgresStore persists rounds. The range structure and equivalence links
// live in JSONB columns; a round is always read and written as a unit.
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

func (s *PostgresStore) Create(ctx context.Context, round *Round) error {
	rangesJSON, err := json.Marshal(round.Ranges)
	if err != nil {
		return fmt.Errorf("marshal round ranges: %w", err)
	}
	equivalentJSON, err := json.Marshal(round.Equivalent)
	if err != nil {
		return fmt.Errorf("marshal round equivalents: %w", err)
	}
	query := `
		INSERT INTO rounds (id, name, ranges, valid_from, valid_to, equivalent_round_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.q(ctx).ExecContext(ctx, query,
		round.ID.String(), round.Name, rangesJSON, round.ValidFrom, round.ValidTo, equivalentJSON)
	if err != nil {
		return fmt.Errorf("create round: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, roundID id.RoundID) (*Round, error) {
	query := `
		SELECT id, name, ranges, valid_from, valid_to, equivalent_round_ids
		FROM rounds
		WHERE id = $1
	`
	round, err := scanRound(s.q(ctx).QueryRowContext(ctx, query, roundID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find round: %w", err)
	}
	return round, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Round, error) {
	query := `
		SELECT id, name, ranges, valid_from, valid_to, equivalent_round_ids
		FROM rounds
		ORDER BY name
	`
	rows, err := s.q(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var out []*Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		out = append(out, round)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*Round, error) {
	var round Round
	var rawID string
	var rangesJSON, equivalentJSON []byte
	if err := row.Scan(&rawID, &round.Name, &rangesJSON, &round.ValidFrom, &round.ValidTo, &equivalentJSON); err != nil {
		return nil, err
	}
	parsed, err := id.ParseRoundID(rawID)
	if err != nil {
		return nil, err
	}
	round.ID = parsed
	if err := json.Unmarshal(rangesJSON, &round.Ranges); err != nil {
		return nil, fmt.Errorf("unmarshal round ranges: %w", err)
	}
	if len(equivalentJSON) > 0 {
		if err := json.Unmarshal(equivalentJSON, &round.Equivalent); err != nil {
			return nil, fmt.Errorf("unmarshal round equivalents: %w", err)
		}
	}
	return &round, nil
}
