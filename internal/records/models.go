// Package records computes personal bests and club records.
//
// Both are pure read-time computations over the official score hierarchy.
// There is no materialized record table, so correctness depends only on the
// hierarchy's creation-time invariants.
package records

import (
	"time"

	id "quiverbook/pkg/domain"
)

// PersonalBest is one archer's best official score for one round.
// DateAchieved is the date of the first achievement of that score: ties on
// total are broken by earliest date shot.
type PersonalBest struct {
	RoundID       id.RoundID        `json:"round_id"`
	RoundName     string            `json:"round_name"`
	BestScore     int               `json:"best_score"`
	DateAchieved  time.Time         `json:"date_achieved"`
	CompetitionID *id.CompetitionID `json:"competition_id,omitempty"`
}

// ClubRecord is the best official score for one round across all archers.
// The holder's name is resolved against the roster at query time, so a name
// change shows up retroactively; it is never frozen at record time.
type ClubRecord struct {
	RoundID          id.RoundID  `json:"round_id"`
	RoundName        string      `json:"round_name"`
	RecordScore      int         `json:"record_score"`
	RecordHolderID   id.ArcherID `json:"record_holder_id"`
	RecordHolderName string      `json:"record_holder_name"`
	DateAchieved     time.Time   `json:"date_achieved"`
}
