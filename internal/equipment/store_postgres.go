package equipment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, eq *Equipment) error {
	// Uniqueness is enforced by a unique index on lower(name) so concurrent
	// creates cannot both succeed.
	query := `INSERT INTO equipment (id, name) VALUES ($1, $2)`
	_, err := s.db.ExecContext(ctx, query, eq.ID.String(), eq.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, equipmentID id.EquipmentID) (*Equipment, error) {
	var eq Equipment
	var rawID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM equipment WHERE id = $1`, equipmentID.String()).
		Scan(&rawID, &eq.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find equipment: %w", err)
	}
	parsed, err := id.ParseEquipmentID(rawID)
	if err != nil {
		return nil, err
	}
	eq.ID = parsed
	return &eq, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Equipment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM equipment ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	var out []*Equipment
	for rows.Next() {
		var eq Equipment
		var rawID string
		if err := rows.Scan(&rawID, &eq.Name); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		parsed, err := id.ParseEquipmentID(rawID)
		if err != nil {
			return nil, err
		}
		eq.ID = parsed
		out = append(out, &eq)
	}
	return out, rows.Err()
}
