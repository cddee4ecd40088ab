// Package service orchestrates the staging pipeline: submission, the review
// queue, and the pending -> approved/rejected state machine, including the
// approved-path materialization of the official score hierarchy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiverbook/internal/archers"
	"quiverbook/internal/competitions"
	"quiverbook/internal/equipment"
	"quiverbook/internal/rounds"
	"quiverbook/internal/scores"
	"quiverbook/internal/scoring"
	"quiverbook/internal/staging"
	stagingmetrics "quiverbook/internal/staging/metrics"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/audit"
	"quiverbook/pkg/platform/sentinel"
	"quiverbook/pkg/requestcontext"
)

// Service owns every mutation of staging scores. Handlers never touch the
// stores directly.
type Service struct {
	staging      staging.Store
	scores       scores.Store
	archers      archers.Store
	rounds       rounds.Store
	equipment    equipment.Store
	competitions competitions.Store
	tx           StoreTx
	auditor      *audit.Publisher
	metrics      *stagingmetrics.Metrics
	logger       *slog.Logger
}

type serviceConfig struct {
	tx      StoreTx
	auditor *audit.Publisher
	metrics *stagingmetrics.Metrics
	logger  *slog.Logger
}

type Option func(*serviceConfig)

// WithTx supplies the transactional boundary; defaults to a coarse lock for
// in-memory composition.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) { c.tx = tx }
}

func WithAudit(auditor *audit.Publisher) Option {
	return func(c *serviceConfig) { c.auditor = auditor }
}

func WithMetrics(m *stagingmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func New(stagingStore staging.Store, scoreStore scores.Store,
	archerStore archers.Store, roundStore rounds.Store,
	equipmentStore equipment.Store, competitionStore competitions.Store,
	opts ...Option) (*Service, error) {

	if stagingStore == nil || scoreStore == nil || archerStore == nil ||
		roundStore == nil || equipmentStore == nil || competitionStore == nil {
		return nil, errors.New("all stores are required")
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		staging:      stagingStore,
		scores:       scoreStore,
		archers:      archerStore,
		rounds:       roundStore,
		equipment:    equipmentStore,
		competitions: competitionStore,
		tx:           cfg.tx,
		auditor:      cfg.auditor,
		metrics:      cfg.metrics,
		logger:       cfg.logger,
	}, nil
}

// SubmitInput is an archer's raw submission. Status and timestamp are
// server-owned; nothing the client sends can influence them.
type SubmitInput struct {
	ArcherID    id.ArcherID
	RoundID     id.RoundID
	EquipmentID id.EquipmentID
	Breakdown   []scoring.RangeScores
}

// Submit validates the references and every arrow token, recomputes the raw
// score server-side, and persists a pending record. An empty breakdown is
// accepted and scores 0.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*staging.StagingScore, error) {
	if _, err := s.archers.FindByID(ctx, in.ArcherID); err != nil {
		return nil, notFoundOr(err, "archer not found")
	}
	if _, err := s.rounds.FindByID(ctx, in.RoundID); err != nil {
		return nil, notFoundOr(err, "round not found")
	}
	if _, err := s.equipment.FindByID(ctx, in.EquipmentID); err != nil {
		return nil, notFoundOr(err, "equipment not found")
	}

	rawScore, err := scoring.RoundTotal(in.Breakdown)
	if err != nil {
		return nil, err
	}

	record := &staging.StagingScore{
		ID:          id.StagingScoreID(uuid.New()),
		ArcherID:    in.ArcherID,
		RoundID:     in.RoundID,
		EquipmentID: in.EquipmentID,
		SubmittedAt: requestcontext.Now(ctx),
		RawScore:    rawScore,
		Status:      staging.StatusPending,
		Breakdown:   in.Breakdown,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.staging.Create(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store submission")
		}
		return s.emit(txCtx, audit.Event{
			Action:  audit.ActionScoreSubmitted,
			ActorID: in.ArcherID.String(),
			Subject: record.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSubmissions()
	return record, nil
}

// Get returns one staging score by id.
func (s *Service) Get(ctx context.Context, stagingID id.StagingScoreID) (*staging.StagingScore, error) {
	record, err := s.staging.FindByID(ctx, stagingID)
	if err != nil {
		return nil, notFoundOr(err, "staging score not found")
	}
	return record, nil
}

// ListPending returns the review queue oldest-first, with archer, round,
// and equipment names joined on for display and any breakdown ranges
// outside the round definition flagged. The names and flags are a
// read-side view; only ids are persisted.
func (s *Service) ListPending(ctx context.Context) ([]staging.ReviewItem, error) {
	pending, err := s.staging.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending scores")
	}
	items := make([]staging.ReviewItem, 0, len(pending))
	for _, record := range pending {
		item := staging.ReviewItem{StagingScore: record}
		if archer, err := s.archers.FindByID(ctx, record.ArcherID); err == nil {
			item.ArcherName = archer.FullName()
		}
		if round, err := s.rounds.FindByID(ctx, record.RoundID); err == nil {
			item.RoundName = round.Name
			for _, rng := range record.Breakdown {
				if !round.HasRange(rng.RangeID) {
					item.UnknownRangeIDs = append(item.UnknownRangeIDs, rng.RangeID.String())
				}
			}
		}
		if eq, err := s.equipment.FindByID(ctx, record.EquipmentID); err == nil {
			item.EquipmentName = eq.Name
		}
		items = append(items, item)
	}
	return items, nil
}

// ListAll returns every submission newest-first for the audit view.
func (s *Service) ListAll(ctx context.Context) ([]*staging.StagingScore, error) {
	list, err := s.staging.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list staging scores")
	}
	return list, nil
}

// Delete hard-removes a staging score in any status. Distinct from
// rejection: rejected records stay as an audit trail, deleted ones do not.
func (s *Service) Delete(ctx context.Context, stagingID id.StagingScoreID) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.staging.Delete(txCtx, stagingID); err != nil {
			return notFoundOr(err, "staging score not found")
		}
		return s.emit(txCtx, audit.Event{
			Action:  audit.ActionScoreDeleted,
			ActorID: requestcontext.ArcherID(ctx).String(),
			Subject: stagingID.String(),
		})
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementResolution("deleted")
	return nil
}

// ApproveResult links the new official score to the staging record it came
// from.
type ApproveResult struct {
	ScoreID        id.ScoreID        `json:"score_id"`
	StagingScoreID id.StagingScoreID `json:"staging_score_id"`
}

// Approve transitions a pending record to approved and materializes the
// official Score/End/Arrow hierarchy from its breakdown. The status flip
// and the hierarchy creation are one atomic unit: a failure anywhere rolls
// everything back and leaves the record pending. A concurrent second
// approval blocks on the row lock and then fails its guard, so exactly one
// official score is ever created.
func (s *Service) Approve(ctx context.Context, stagingID id.StagingScoreID,
	competitionID *id.CompetitionID) (ApproveResult, error) {

	start := time.Now()
	now := requestcontext.Now(ctx)

	if competitionID != nil {
		if _, err := s.competitions.FindByID(ctx, *competitionID); err != nil {
			return ApproveResult{}, notFoundOr(err, "competition not found")
		}
	}

	var result ApproveResult
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		staged, err := s.staging.Execute(txCtx, stagingID,
			func(record *staging.StagingScore) error { return record.CanApprove() },
			func(record *staging.StagingScore) { record.ApplyApproval(now) },
		)
		if err != nil {
			return notFoundOr(err, "staging score not found")
		}

		score, err := materialize(staged, competitionID)
		if err != nil {
			return err
		}
		if err := s.scores.Create(txCtx, score); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create official score")
		}

		if err := s.emit(txCtx, audit.Event{
			Action:  audit.ActionScoreApproved,
			ActorID: requestcontext.ArcherID(ctx).String(),
			Subject: stagingID.String(),
			Detail:  "score " + score.ID.String(),
		}); err != nil {
			return err
		}

		result = ApproveResult{ScoreID: score.ID, StagingScoreID: stagingID}
		return nil
	})
	if err != nil {
		return ApproveResult{}, err
	}

	s.metrics.IncrementResolution("approved")
	s.metrics.ObserveApprove(start)
	s.logger.InfoContext(ctx, "staging score approved",
		"staging_score_id", stagingID.String(),
		"score_id", result.ScoreID.String(),
	)
	return result, nil
}

// RejectResult echoes the persisted rejection back to the caller.
type RejectResult struct {
	StagingScoreID id.StagingScoreID `json:"staging_score_id"`
	Reason         string            `json:"reason"`
}

// Reject transitions a pending record to rejected and persists the
// recorder's reason. Rejecting an already-resolved record fails with a
// conflict; a corrected score is a new submission.
func (s *Service) Reject(ctx context.Context, stagingID id.StagingScoreID, reason string) (RejectResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return RejectResult{}, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	now := requestcontext.Now(ctx)

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.staging.Execute(txCtx, stagingID,
			func(record *staging.StagingScore) error { return record.CanReject() },
			func(record *staging.StagingScore) { record.ApplyRejection(reason, now) },
		)
		if err != nil {
			return notFoundOr(err, "staging score not found")
		}
		return s.emit(txCtx, audit.Event{
			Action:  audit.ActionScoreRejected,
			ActorID: requestcontext.ArcherID(ctx).String(),
			Subject: stagingID.String(),
			Detail:  reason,
		})
	})
	if err != nil {
		return RejectResult{}, err
	}

	s.metrics.IncrementResolution("rejected")
	return RejectResult{StagingScoreID: stagingID, Reason: reason}, nil
}

// materialize builds the official hierarchy from a staged breakdown. End
// numbers are 1-based and sequential across the whole round; per-end totals
// are recomputed through the scoring value model. The total score is the
// rawScore computed at submission, not re-derived a third time.
func materialize(staged *staging.StagingScore, competitionID *id.CompetitionID) (*scores.Score, error) {
	var ends []scores.End
	endNumber := 0
	for _, rng := range staged.Breakdown {
		for _, arrowValues := range rng.Ends {
			endNumber++
			end, err := scores.NewEnd(id.EndID(uuid.New()), endNumber, rng.RangeID, arrowValues)
			if err != nil {
				return nil, err
			}
			ends = append(ends, end)
		}
	}

	submittedAt := staged.SubmittedAt
	dateShot := time.Date(submittedAt.Year(), submittedAt.Month(), submittedAt.Day(),
		0, 0, 0, 0, submittedAt.Location())

	return scores.NewScore(id.ScoreID(uuid.New()), staged.ArcherID, staged.RoundID,
		staged.EquipmentID, competitionID, dateShot, staged.RawScore, ends)
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// notFoundOr translates a store sentinel into a coded domain error, letting
// already-coded errors pass through untouched.
func notFoundOr(err error, message string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}
