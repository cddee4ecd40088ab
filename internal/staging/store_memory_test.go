package staging

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

type StagingStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *StagingStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *StagingStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestStagingStoreSuite(t *testing.T) {
	suite.Run(t, new(StagingStoreSuite))
}

func (s *StagingStoreSuite) newScore(submittedAt time.Time) *StagingScore {
	return &StagingScore{
		ID:          id.StagingScoreID(uuid.New()),
		ArcherID:    id.ArcherID(uuid.New()),
		RoundID:     id.RoundID(uuid.New()),
		EquipmentID: id.EquipmentID(uuid.New()),
		SubmittedAt: submittedAt,
		RawScore:    46,
		Status:      StatusPending,
		Breakdown: []scoring.RangeScores{{
			RangeID: id.RangeID(uuid.New()),
			Ends:    [][]scoring.ArrowValue{{"X", "9", "9", "8", "7", "3"}},
		}},
	}
}

func (s *StagingStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds a staging score", func() {
		score := s.newScore(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, score))

		found, err := s.store.FindByID(s.ctx, score.ID)
		s.Require().NoError(err)
		s.Equal(score.RawScore, found.RawScore)
		s.Equal(StatusPending, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.StagingScoreID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		score := s.newScore(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, score))
		s.ErrorIs(s.store.Create(s.ctx, score), sentinel.ErrConflict)
	})

	s.Run("stored state is isolated from the caller's copy", func() {
		score := s.newScore(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, score))

		score.Breakdown[0].Ends[0][0] = "M"
		score.Status = StatusApproved

		found, err := s.store.FindByID(s.ctx, score.ID)
		s.Require().NoError(err)
		s.Equal(scoring.InnerTen, found.Breakdown[0].Ends[0][0])
		s.Equal(StatusPending, found.Status)
	})
}

func (s *StagingStoreSuite) TestListing() {
	s.Run("pending queue is oldest first and excludes resolved", func() {
		base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
		older := s.newScore(base)
		newer := s.newScore(base.Add(2 * time.Hour))
		resolved := s.newScore(base.Add(time.Hour))
		resolved.Status = StatusApproved

		s.Require().NoError(s.store.Create(s.ctx, newer))
		s.Require().NoError(s.store.Create(s.ctx, older))
		s.Require().NoError(s.store.Create(s.ctx, resolved))

		pending, err := s.store.ListPending(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(pending, 2)
		s.Equal(older.ID, pending[0].ID)
		s.Equal(newer.ID, pending[1].ID)
	})

	s.Run("full listing is newest first and includes resolved", func() {
		base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
		older := s.newScore(base)
		rejected := s.newScore(base.Add(time.Hour))
		rejected.Status = StatusRejected

		s.Require().NoError(s.store.Create(s.ctx, older))
		s.Require().NoError(s.store.Create(s.ctx, rejected))

		all, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 2)
		s.Equal(rejected.ID, all[0].ID)
		s.Equal(older.ID, all[1].ID)
	})
}

func (s *StagingStoreSuite) TestExecute() {
	s.Run("applies the mutation when the guard passes", func() {
		score := s.newScore(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, score))

		now := time.Now()
		updated, err := s.store.Execute(s.ctx, score.ID,
			func(r *StagingScore) error { return r.CanApprove() },
			func(r *StagingScore) { r.ApplyApproval(now) },
		)
		s.Require().NoError(err)
		s.Equal(StatusApproved, updated.Status)

		found, err := s.store.FindByID(s.ctx, score.ID)
		s.Require().NoError(err)
		s.Equal(StatusApproved, found.Status)
	})

	s.Run("a failing guard leaves the record untouched", func() {
		score := s.newScore(time.Now())
		score.Status = StatusRejected
		s.Require().NoError(s.store.Create(s.ctx, score))

		_, err := s.store.Execute(s.ctx, score.ID,
			func(r *StagingScore) error { return r.CanApprove() },
			func(r *StagingScore) { r.ApplyApproval(time.Now()) },
		)
		s.Require().Error(err)

		found, findErr := s.store.FindByID(s.ctx, score.ID)
		s.Require().NoError(findErr)
		s.Equal(StatusRejected, found.Status)
		s.Nil(found.ResolvedAt)
	})

	s.Run("unknown record is ErrNotFound", func() {
		_, err := s.store.Execute(s.ctx, id.StagingScoreID(uuid.New()),
			func(*StagingScore) error { return nil },
			func(*StagingScore) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *StagingStoreSuite) TestDelete() {
	s.Run("removes the record", func() {
		score := s.newScore(time.Now())
		s.Require().NoError(s.store.Create(s.ctx, score))
		s.Require().NoError(s.store.Delete(s.ctx, score.ID))

		_, err := s.store.FindByID(s.ctx, score.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown record is ErrNotFound", func() {
		s.ErrorIs(s.store.Delete(s.ctx, id.StagingScoreID(uuid.New())), sentinel.ErrNotFound)
	})
}
