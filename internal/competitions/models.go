// Package competitions holds competition reference data. A score with no
// competition reference is a practice score.
package competitions

import (
	"context"
	"strings"
	"time"

	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

type Competition struct {
	ID       id.CompetitionID `json:"id"`
	Name     string           `json:"name"`
	Date     time.Time        `json:"date"`
	Location string           `json:"location,omitempty"`
}

func NewCompetition(competitionID id.CompetitionID, name, location string, date time.Time) (*Competition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "competition name is required")
	}
	if date.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "competition date is required")
	}
	return &Competition{
		ID:       competitionID,
		Name:     name,
		Date:     date,
		Location: strings.TrimSpace(location),
	}, nil
}

type Store interface {
	Create(ctx context.Context, competition *Competition) error
	FindByID(ctx context.Context, competitionID id.CompetitionID) (*Competition, error)
	List(ctx context.Context) ([]*Competition, error)
}
