package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
	txcontext "quiverbook/pkg/platform/tx"
)

// PostgresStore persists the normalized score hierarchy across the scores,
// ends, and arrows tables. Official data is read-heavy and queried
// relationally, unlike the staging blob.
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

// Create writes the score with all its ends and arrows. Callers that need
// atomicity with other writes run this inside a context-carried transaction.
func (s *PostgresStore) Create(ctx context.Context, score *Score) error {
	q := s.q(ctx)

	var compID any
	if score.CompetitionID != nil {
		compID = score.CompetitionID.String()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO scores (id, archer_id, round_id, equipment_id, competition_id, date_shot, total_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, score.ID.String(), score.ArcherID.String(), score.RoundID.String(),
		score.EquipmentID.String(), compID, score.DateShot, score.TotalScore)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}

	for _, end := range score.Ends {
		_, err := q.ExecContext(ctx, `
			INSERT INTO ends (id, score_id, end_number, range_id, end_score)
			VALUES ($1, $2, $3, $4, $5)
		`, end.ID.String(), score.ID.String(), end.Number, end.RangeID.String(), end.EndScore)
		if err != nil {
			return fmt.Errorf("insert end %d: %w", end.Number, err)
		}
		for i, arrow := range end.Arrows {
			_, err := q.ExecContext(ctx, `
				INSERT INTO arrows (id, end_id, arrow_number, value, inner_ten)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.NewString(), end.ID.String(), i+1, string(arrow.Value), arrow.InnerTen)
			if err != nil {
				return fmt.Errorf("insert arrow %d of end %d: %w", i+1, end.Number, err)
			}
		}
	}
	return nil
}

// FindByID loads a score with its full end and arrow detail.
func (s *PostgresStore) FindByID(ctx context.Context, scoreID id.ScoreID) (*Score, error) {
	q := s.q(ctx)

	score, err := scanScore(q.QueryRowContext(ctx, `
		SELECT id, archer_id, round_id, equipment_id, competition_id, date_shot, total_score
		FROM scores
		WHERE id = $1
	`, scoreID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find score: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT e.id, e.end_number, e.range_id, e.end_score,
		       a.value, a.inner_ten
		FROM ends e
		LEFT JOIN arrows a ON a.end_id = e.id
		WHERE e.score_id = $1
		ORDER BY e.end_number, a.arrow_number
	`, scoreID.String())
	if err != nil {
		return nil, fmt.Errorf("load ends: %w", err)
	}
	defer rows.Close()

	var ends []End
	for rows.Next() {
		var rawEndID, rawRangeID string
		var endNumber, endScore int
		var value sql.NullString
		var innerTen sql.NullBool
		if err := rows.Scan(&rawEndID, &endNumber, &rawRangeID, &endScore, &value, &innerTen); err != nil {
			return nil, fmt.Errorf("scan end row: %w", err)
		}
		endUUID, err := uuid.Parse(rawEndID)
		if err != nil {
			return nil, fmt.Errorf("parse end id: %w", err)
		}
		rangeID, err := id.ParseRangeID(rawRangeID)
		if err != nil {
			return nil, err
		}
		if len(ends) == 0 || ends[len(ends)-1].ID != id.EndID(endUUID) {
			ends = append(ends, End{
				ID:       id.EndID(endUUID),
				Number:   endNumber,
				RangeID:  rangeID,
				EndScore: endScore,
			})
		}
		if value.Valid {
			current := &ends[len(ends)-1]
			current.Arrows = append(current.Arrows, Arrow{
				Value:    scoring.ArrowValue(value.String),
				InnerTen: innerTen.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ends: %w", err)
	}
	score.Ends = ends
	return score, nil
}

// ListByArcher returns an archer's scores newest shot first, totals only.
func (s *PostgresStore) ListByArcher(ctx context.Context, archerID id.ArcherID) ([]*Score, error) {
	return s.list(ctx, `
		SELECT id, archer_id, round_id, equipment_id, competition_id, date_shot, total_score
		FROM scores
		WHERE archer_id = $1
		ORDER BY date_shot DESC, id
	`, archerID.String())
}

// ListAll returns every official score, newest shot first, totals only.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*Score, error) {
	return s.list(ctx, `
		SELECT id, archer_id, round_id, equipment_id, competition_id, date_shot, total_score
		FROM scores
		ORDER BY date_shot DESC, id
	`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Score, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []*Score
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, score)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScore(row rowScanner) (*Score, error) {
	var score Score
	var rawID, rawArcher, rawRound, rawEquipment string
	var rawCompetition sql.NullString
	if err := row.Scan(&rawID, &rawArcher, &rawRound, &rawEquipment,
		&rawCompetition, &score.DateShot, &score.TotalScore); err != nil {
		return nil, err
	}
	scoreID, err := id.ParseScoreID(rawID)
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
	score.ID = scoreID
	score.ArcherID = archerID
	score.RoundID = roundID
	score.EquipmentID = equipmentID
	if rawCompetition.Valid {
		compID, err := id.ParseCompetitionID(rawCompetition.String)
		if err != nil {
			return nil, err
		}
		score.CompetitionID = &compID
	}
	return &score, nil
}
