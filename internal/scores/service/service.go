// Package service exposes read access to the official score hierarchy and
// the direct-creation path used for historical or manual entries. The common
// creation path is staging approval, which writes through the same store.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quiverbook/internal/scores"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/audit"
	"quiverbook/pkg/platform/sentinel"
	"quiverbook/pkg/requestcontext"
)

type Service struct {
	store   scores.Store
	auditor *audit.Publisher
}

type Option func(*Service)

func WithAudit(auditor *audit.Publisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func New(store scores.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("score store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateInput is a manual/historical score entry. Ends are optional; when
// present the total must match their sum.
type CreateInput struct {
	ArcherID      id.ArcherID
	RoundID       id.RoundID
	EquipmentID   id.EquipmentID
	CompetitionID *id.CompetitionID
	DateShot      string // "2006-01-02"; empty means today
	TotalScore    int
	Ends          []scores.End
}

// Create validates and persists a manually entered official score.
func (s *Service) Create(ctx context.Context, in CreateInput) (*scores.Score, error) {
	dateShot := requestcontext.Now(ctx)
	if in.DateShot != "" {
		parsed, err := parseDate(in.DateShot)
		if err != nil {
			return nil, err
		}
		dateShot = parsed
	}

	score, err := scores.NewScore(id.ScoreID(uuid.New()), in.ArcherID, in.RoundID,
		in.EquipmentID, in.CompetitionID, dateShot, in.TotalScore, in.Ends)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, score); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create score")
	}
	// Manual entry bypasses the staging pipeline, so it leaves its own
	// audit trail.
	if s.auditor != nil {
		err := s.auditor.Emit(ctx, audit.Event{
			Action:  audit.ActionScoreCreated,
			ActorID: requestcontext.ArcherID(ctx).String(),
			Subject: score.ID.String(),
			Detail:  "manual entry",
		})
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
		}
	}
	return score, nil
}

// GetByID returns a score with its full end and arrow breakdown.
func (s *Service) GetByID(ctx context.Context, scoreID id.ScoreID) (*scores.Score, error) {
	score, err := s.store.FindByID(ctx, scoreID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "score not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load score")
	}
	return score, nil
}

// ListByArcher returns an archer's official scores, newest shot first.
func (s *Service) ListByArcher(ctx context.Context, archerID id.ArcherID) ([]*scores.Score, error) {
	list, err := s.store.ListByArcher(ctx, archerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list scores")
	}
	return list, nil
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "date must be formatted YYYY-MM-DD")
	}
	return parsed, nil
}
