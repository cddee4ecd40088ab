package staging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
	txcontext "quiverbook/pkg/platform/tx"
)

// PostgresStore persists staging scores. The arrow breakdown is a JSONB
// blob: staging data is provisional and read as a unit, so it is not worth
// normalizing into rows the way official scores are.
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

const stagingColumns = `id, archer_id, round_id, equipment_id, submitted_at,
	raw_score, status, rejection_reason, breakdown, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, score *StagingScore) error {
	breakdownJSON, err := json.Marshal(score.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	query := `
		INSERT INTO staging_scores (` + stagingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.q(ctx).ExecContext(ctx, query,
		score.ID.String(), score.ArcherID.String(), score.RoundID.String(),
		score.EquipmentID.String(), score.SubmittedAt, score.RawScore,
		string(score.Status), score.RejectionReason, breakdownJSON, score.ResolvedAt)
	if err != nil {
		return fmt.Errorf("create staging score: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, stagingID id.StagingScoreID) (*StagingScore, error) {
	query := `SELECT ` + stagingColumns + ` FROM staging_scores WHERE id = $1`
	score, err := scanStaging(s.q(ctx).QueryRowContext(ctx, query, stagingID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find staging score: %w", err)
	}
	return score, nil
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]*StagingScore, error) {
	query := `
		SELECT ` + stagingColumns + `
		FROM staging_scores
		WHERE status = 'pending'
		ORDER BY submitted_at, id
	`
	return s.list(ctx, query)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*StagingScore, error) {
	query := `
		SELECT ` + stagingColumns + `
		FROM staging_scores
		ORDER BY submitted_at DESC, id
	`
	return s.list(ctx, query)
}

func (s *PostgresStore) Delete(ctx context.Context, stagingID id.StagingScoreID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM staging_scores WHERE id = $1`, stagingID.String())
	if err != nil {
		return fmt.Errorf("delete staging score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete staging score: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute locks the row with SELECT ... FOR UPDATE, runs the guard, applies
// the mutation, and writes it back. Run inside a context transaction the
// lock extends to the surrounding unit of work, so a concurrent approver
// blocks here and then fails its guard instead of materializing a second
// official score.
func (s *PostgresStore) Execute(ctx context.Context, stagingID id.StagingScoreID,
	validate func(*StagingScore) error, apply func(*StagingScore)) (*StagingScore, error) {

	q := s.q(ctx)
	query := `SELECT ` + stagingColumns + ` FROM staging_scores WHERE id = $1 FOR UPDATE`
	score, err := scanStaging(q.QueryRowContext(ctx, query, stagingID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock staging score: %w", err)
	}

	if err := validate(score); err != nil {
		return nil, err
	}
	apply(score)

	_, err = q.ExecContext(ctx, `
		UPDATE staging_scores
		SET status = $2, rejection_reason = $3, resolved_at = $4
		WHERE id = $1
	`, score.ID.String(), string(score.Status), score.RejectionReason, score.ResolvedAt)
	if err != nil {
		return nil, fmt.Errorf("update staging score: %w", err)
	}
	return score, nil
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*StagingScore, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list staging scores: %w", err)
	}
	defer rows.Close()

	var out []*StagingScore
	for rows.Next() {
		score, err := scanStaging(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staging score: %w", err)
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaging(row rowScanner) (*StagingScore, error) {
	var score StagingScore
	var rawID, rawArcher, rawRound, rawEquipment, rawStatus string
	var breakdownJSON []byte
	if err := row.Scan(&rawID, &rawArcher, &rawRound, &rawEquipment,
		&score.SubmittedAt, &score.RawScore, &rawStatus,
		&score.RejectionReason, &breakdownJSON, &score.ResolvedAt); err != nil {
		return nil, err
	}
	stagingID, err := id.ParseStagingScoreID(rawID)
	if err != nil {
		return nil, err
	}
	archerID, err := id.ParseArcherID(rawArcher)
	if err != nil {
		return nil, err
	}
	roundID, err := id.ParseRoundID(rawRound)
	if err != nil {
		return nil, err
	}
	equipmentID, err := id.ParseEquipmentID(rawEquipment)
	if err != nil {
		return nil, err
	}
	score.ID = stagingID
	score.ArcherID = archerID
	score.RoundID = roundID
	score.EquipmentID = equipmentID
	score.Status = Status(rawStatus)
	if err := json.Unmarshal(breakdownJSON, &score.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	if score.Breakdown == nil {
		score.Breakdown = []scoring.RangeScores{}
	}
	return &score, nil
}
