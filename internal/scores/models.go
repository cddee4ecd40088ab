// Package scores is the permanent scoring hierarchy: Score -> End -> Arrow.
//
// Records here are created once, on staging approval or by manual entry for
// historical data, and never edited afterwards. History, personal bests, and
// club records all read from this hierarchy.
package scores

import (
	"context"
	"time"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// Arrow is a single official arrow. InnerTen is distinct from the value:
// "10" and "X" both score ten, only "X" sets the flag.
type Arrow struct {
	Value    scoring.ArrowValue `json:"value"`
	InnerTen bool               `json:"inner_ten"`
}

// End is one official set of arrows shot at a range segment. EndScore is
// derived from the arrows at creation time and never edited independently.
type End struct {
	ID       id.EndID   `json:"id"`
	Number   int        `json:"number"`
	RangeID  id.RangeID `json:"range_id"`
	Arrows   []Arrow    `json:"arrows"`
	EndScore int        `json:"end_score"`
}

// Score is a verified, immutable score entry. A nil CompetitionID marks a
// practice score.
type Score struct {
	ID            id.ScoreID        `json:"id"`
	ArcherID      id.ArcherID       `json:"archer_id"`
	RoundID       id.RoundID        `json:"round_id"`
	EquipmentID   id.EquipmentID    `json:"equipment_id"`
	CompetitionID *id.CompetitionID `json:"competition_id,omitempty"`
	DateShot      time.Time         `json:"date_shot"`
	TotalScore    int               `json:"total_score"`
	Ends          []End             `json:"ends,omitempty"`
}

// NewScore validates the creation-time invariants: the total must be
// non-negative and, when ends are supplied, must equal the sum of their end
// scores. After this point the total is never recomputed.
func NewScore(scoreID id.ScoreID, archerID id.ArcherID, roundID id.RoundID,
	equipmentID id.EquipmentID, competitionID *id.CompetitionID,
	dateShot time.Time, totalScore int, ends []End) (*Score, error) {

	if totalScore < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidScore, "total score must not be negative")
	}
	if len(ends) > 0 {
		sum := 0
		for _, end := range ends {
			sum += end.EndScore
		}
		if sum != totalScore {
			return nil, dErrors.Newf(dErrors.CodeInvalidScore,
				"total score %d does not match sum of end scores %d", totalScore, sum)
		}
	}
	return &Score{
		ID:            scoreID,
		ArcherID:      archerID,
		RoundID:       roundID,
		EquipmentID:   equipmentID,
		CompetitionID: competitionID,
		DateShot:      dateShot,
		TotalScore:    totalScore,
		Ends:          ends,
	}, nil
}

// NewEnd derives an official end from its arrow tokens. The end score is
// computed here, once, through the scoring value model.
func NewEnd(endID id.EndID, number int, rangeID id.RangeID, values []scoring.ArrowValue) (End, error) {
	total, err := scoring.EndTotal(values)
	if err != nil {
		return End{}, err
	}
	arrows := make([]Arrow, len(values))
	for i, v := range values {
		arrows[i] = Arrow{Value: v, InnerTen: scoring.IsInnerTen(v)}
	}
	return End{
		ID:       endID,
		Number:   number,
		RangeID:  rangeID,
		Arrows:   arrows,
		EndScore: total,
	}, nil
}

// Store abstracts score persistence. Create writes the whole hierarchy;
// reads return it fully populated. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, score *Score) error
	FindByID(ctx context.Context, scoreID id.ScoreID) (*Score, error)
	ListByArcher(ctx context.Context, archerID id.ArcherID) ([]*Score, error)
	ListAll(ctx context.Context) ([]*Score, error)
}
