package competitions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, competition *Competition) error {
	query := `
		INSERT INTO competitions (id, name, date, location)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		competition.ID.String(), competition.Name, competition.Date, competition.Location)
	if err != nil {
		return fmt.Errorf("create competition: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, competitionID id.CompetitionID) (*Competition, error) {
	var competition Competition
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, date, location FROM competitions WHERE id = $1`,
		competitionID.String()).
		Scan(&rawID, &competition.Name, &competition.Date, &competition.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find competition: %w", err)
	}
	parsed, err := id.ParseCompetitionID(rawID)
	if err != nil {
		return nil, err
	}
	competition.ID = parsed
	return &competition, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Competition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, date, location FROM competitions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	defer rows.Close()

	var out []*Competition
	for rows.Next() {
		var competition Competition
		var rawID string
		if err := rows.Scan(&rawID, &competition.Name, &competition.Date, &competition.Location); err != nil {
			return nil, fmt.Errorf("scan competition: %w", err)
		}
		parsed, err := id.ParseCompetitionID(rawID)
		if err != nil {
			return nil, err
		}
		competition.ID = parsed
		out = append(out, &competition)
	}
	return out, rows.Err()
}
