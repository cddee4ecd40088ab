// Package scoring is the single place that interprets arrow values.
//
// Both the claimed total computed at submission time and the recomputed
// total checked at review time go through these functions, so the two can
// never drift apart through divergent parsing logic.
package scoring

import (
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// ArrowValue is one arrow's recorded value as a string token: "0" through
// "10", "X" for an inner ten, or "M" for a miss. "X" and "10" both score 10
// but only "X" marks the inner ring, which matters for records.
type ArrowValue string

const (
	InnerTen ArrowValue = "X"
	Miss     ArrowValue = "M"
)

// RangeScores groups the ends shot at one range segment, in shooting order.
type RangeScores struct {
	RangeID id.RangeID     `json:"range_id"`
	Ends    [][]ArrowValue `json:"ends"`
}

// arrowPoints is the closed set of accepted tokens. Tokens are stored
// verbatim, so only the canonical digit strings are valid; lenient numeric
// forms like "07" or "+7" are not scores.
var arrowPoints = map[ArrowValue]int{
	Miss: 0, InnerTen: 10,
	"0": 0, "1": 1, "2": 2, "3": 3, "4": 4,
	"5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
}

// ArrowScore returns the point value of a single arrow token. Anything
// outside the token table is rejected; malformed input is never coerced
// to zero.
func ArrowScore(v ArrowValue) (int, error) {
	n, ok := arrowPoints[v]
	if !ok {
		return 0, dErrors.Newf(dErrors.CodeInvalidArrowValue, "invalid arrow value %q", v)
	}
	return n, nil
}

// IsInnerTen reports whether the arrow landed in the inner ten ring. A plain
// "10" does not count.
func IsInnerTen(v ArrowValue) bool { return v == InnerTen }

// EndTotal sums one end's arrows. The function is agnostic to arrows-per-end;
// the round definition governs that upstream.
func EndTotal(arrows []ArrowValue) (int, error) {
	total := 0
	for i, arrow := range arrows {
		score, err := ArrowScore(arrow)
		if err != nil {
			return 0, dErrors.Newf(dErrors.CodeInvalidArrowValue,
				"invalid arrow value %q at arrow %d", arrow, i+1)
		}
		total += score
	}
	return total, nil
}

// RoundTotal sums every arrow across every end and range of a submission.
// This is the recomputed total used to cross-check a claimed total. The
// error identifies the range/end/arrow coordinates of the first bad token.
func RoundTotal(ranges []RangeScores) (int, error) {
	total := 0
	for ri, rng := range ranges {
		for ei, end := range rng.Ends {
			for ai, arrow := range end {
				score, err := ArrowScore(arrow)
				if err != nil {
					return 0, dErrors.Newf(dErrors.CodeInvalidArrowValue,
						"invalid arrow value %q at range %d, end %d, arrow %d",
						arrow, ri+1, ei+1, ai+1)
				}
				total += score
			}
		}
	}
	return total, nil
}

// Validate walks a breakdown and rejects the first malformed arrow token,
// reporting its coordinates. A breakdown with zero ranges or ends is valid
// and scores 0.
func Validate(ranges []RangeScores) error {
	_, err := RoundTotal(ranges)
	return err
}
