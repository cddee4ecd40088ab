// Package rounds defines named scoring formats and their range structure.
package rounds

import (
	"context"
	"strings"
	"time"

	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// RangeSegment is one distance/face configuration within a round: how far,
// how many arrows per end, and how many ends are shot there.
type RangeSegment struct {
	ID             id.RangeID `json:"id"`
	Sequence       int        `json:"sequence"`
	DistanceMeters int        `json:"distance_meters"`
	ArrowsPerEnd   int        `json:"arrows_per_end"`
	EndCount       int        `json:"end_count"`
}

// Round is a named, standardized sequence of range segments. The optional
// validity window records historical format changes; equivalence links tag
// rounds whose scores are comparable. Neither is resolved automatically by
// the aggregation engine.
type Round struct {
	ID         id.RoundID     `json:"id"`
	Name       string         `json:"name"`
	Ranges     []RangeSegment `json:"ranges"`
	ValidFrom  *time.Time     `json:"valid_from,omitempty"`
	ValidTo    *time.Time     `json:"valid_to,omitempty"`
	Equivalent []id.RoundID   `json:"equivalent_round_ids,omitempty"`
}

// NewRound validates the format definition. Segments must be present,
// positively sized, and are normalized to 1-based sequential order.
func NewRound(roundID id.RoundID, name string, segments []RangeSegment) (*Round, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "round name is required")
	}
	if len(segments) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "round needs at least one range segment")
	}
	for i := range segments {
		seg := &segments[i]
		if seg.DistanceMeters <= 0 || seg.ArrowsPerEnd <= 0 || seg.EndCount <= 0 {
			return nil, dErrors.Newf(dErrors.CodeValidation,
				"range segment %d must have positive distance, arrows per end, and end count", i+1)
		}
		seg.Sequence = i + 1
	}
	return &Round{ID: roundID, Name: name, Ranges: segments}, nil
}

// HasRange reports whether the given range segment belongs to this round.
func (r *Round) HasRange(rangeID id.RangeID) bool {
	for _, seg := range r.Ranges {
		if seg.ID == rangeID {
			return true
		}
	}
	return false
}

// Store abstracts round persistence. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, round *Round) error
	FindByID(ctx context.Context, roundID id.RoundID) (*Round, error)
	List(ctx context.Context) ([]*Round, error)
}
