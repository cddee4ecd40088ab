// Package archers holds the club roster. Archers are reference data for the
// scoring pipeline; the interesting lifecycle lives elsewhere.
package archers

import (
	"context"
	"strings"
	"time"

	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

// Archer is a club member who shoots and submits scores.
type Archer struct {
	ID        id.ArcherID `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	JoinedAt  time.Time   `json:"joined_at"`
}

// FullName is the display name used on review queues and club records. It is
// always resolved at read time, never stored denormalized.
func (a Archer) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NewArcher validates required fields and stamps the join time.
func NewArcher(archerID id.ArcherID, firstName, lastName, email string, now time.Time) (*Archer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "archer first and last name are required")
	}
	return &Archer{
		ID:        archerID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     strings.TrimSpace(email),
		JoinedAt:  now,
	}, nil
}

// Store abstracts archer persistence. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, archer *Archer) error
	FindByID(ctx context.Context, archerID id.ArcherID) (*Archer, error)
	List(ctx context.Context) ([]*Archer, error)
	Delete(ctx context.Context, archerID id.ArcherID) error
}
