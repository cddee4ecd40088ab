//go:build integration

package staging_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quiverbook/internal/scoring"
	"quiverbook/internal/staging"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/sentinel"
	txcontext "quiverbook/pkg/platform/tx"
	"quiverbook/pkg/testutil/containers"
)

type StagingPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *staging.PostgresStore

	archerID    id.ArcherID
	roundID     id.RoundID
	equipmentID id.EquipmentID
}

func TestStagingPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StagingPostgresSuite))
}

func (s *StagingPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = staging.NewPostgres(s.postgres.DB)
}

func (s *StagingPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"arrows", "ends", "scores", "staging_scores",
		"competitions", "equipment", "rounds", "archers"))

	s.archerID = id.ArcherID(uuid.New())
	s.roundID = id.RoundID(uuid.New())
	s.equipmentID = id.EquipmentID(uuid.New())

	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO archers (id, first_name, last_name, email, joined_at)
		VALUES ($1, 'Maya', 'Stein', '', NOW())
	`, s.archerID.String())
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx, `
		INSERT INTO rounds (id, name, ranges) VALUES ($1, 'WA 720', '[]'::jsonb)
	`, s.roundID.String())
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx, `
		INSERT INTO equipment (id, name) VALUES ($1, 'Recurve')
	`, s.equipmentID.String())
	s.Require().NoError(err)
}

func (s *StagingPostgresSuite) newScore() *staging.StagingScore {
	return &staging.StagingScore{
		ID:          id.StagingScoreID(uuid.New()),
		ArcherID:    s.archerID,
		RoundID:     s.roundID,
		EquipmentID: s.equipmentID,
		SubmittedAt: time.Now().UTC().Truncate(time.Microsecond),
		RawScore:    46,
		Status:      staging.StatusPending,
		Breakdown: []scoring.RangeScores{{
			RangeID: id.RangeID(uuid.New()),
			Ends:    [][]scoring.ArrowValue{{"X", "9", "9", "8", "7", "3"}},
		}},
	}
}

func (s *StagingPostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	score := s.newScore()
	s.Require().NoError(s.store.Create(ctx, score))

	found, err := s.store.FindByID(ctx, score.ID)
	s.Require().NoError(err)
	s.Equal(score.RawScore, found.RawScore)
	s.Equal(staging.StatusPending, found.Status)
	s.Require().Len(found.Breakdown, 1)
	s.Equal(score.Breakdown[0].RangeID, found.Breakdown[0].RangeID)
	s.Equal(score.Breakdown[0].Ends, found.Breakdown[0].Ends)
	s.Nil(found.ResolvedAt)

	_, err = s.store.FindByID(ctx, id.StagingScoreID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StagingPostgresSuite) TestExecuteTransitions() {
	ctx := context.Background()
	score := s.newScore()
	s.Require().NoError(s.store.Create(ctx, score))

	now := time.Now().UTC().Truncate(time.Microsecond)
	updated, err := s.store.Execute(ctx, score.ID,
		func(r *staging.StagingScore) error { return r.CanReject() },
		func(r *staging.StagingScore) { r.ApplyRejection("wrong round", now) },
	)
	s.Require().NoError(err)
	s.Equal(staging.StatusRejected, updated.Status)

	found, err := s.store.FindByID(ctx, score.ID)
	s.Require().NoError(err)
	s.Equal(staging.StatusRejected, found.Status)
	s.Equal("wrong round", found.RejectionReason)
	s.Require().NotNil(found.ResolvedAt)

	// Terminal state stays terminal.
	_, err = s.store.Execute(ctx, score.ID,
		func(r *staging.StagingScore) error { return r.CanApprove() },
		func(r *staging.StagingScore) { r.ApplyApproval(now) },
	)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

// TestConcurrentApproval verifies that the row lock serializes concurrent
// approvers: exactly one passes the guard.
func (s *StagingPostgresSuite) TestConcurrentApproval() {
	ctx := context.Background()
	score := s.newScore()
	s.Require().NoError(s.store.Create(ctx, score))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	// FOR UPDATE only holds past the statement inside a transaction, so each
	// approver opens one, mirroring the service's transactional boundary.
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sqlTx, err := s.postgres.DB.BeginTx(ctx, nil)
			if err != nil {
				return
			}
			txCtx := txcontext.WithTx(ctx, sqlTx)

			_, err = s.store.Execute(txCtx, score.ID,
				func(r *staging.StagingScore) error { return r.CanApprove() },
				func(r *staging.StagingScore) { r.ApplyApproval(time.Now().UTC()) },
			)
			if err == nil {
				if sqlTx.Commit() == nil {
					successCount.Add(1)
				}
				return
			}
			_ = sqlTx.Rollback()
			if dErrors.HasCode(err, dErrors.CodeAlreadyApproved) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one approval should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *StagingPostgresSuite) TestPendingQueueOrdering() {
	ctx := context.Background()

	older := s.newScore()
	older.SubmittedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	newer := s.newScore()

	s.Require().NoError(s.store.Create(ctx, newer))
	s.Require().NoError(s.store.Create(ctx, older))

	pending, err := s.store.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(older.ID, pending[0].ID)
	s.Equal(newer.ID, pending[1].ID)
}

func (s *StagingPostgresSuite) TestDelete() {
	ctx := context.Background()
	score := s.newScore()
	s.Require().NoError(s.store.Create(ctx, score))

	s.Require().NoError(s.store.Delete(ctx, score.ID))
	s.ErrorIs(s.store.Delete(ctx, score.ID), sentinel.ErrNotFound)
}
