package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quiverbook/internal/scores"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/audit"
	"quiverbook/pkg/requestcontext"
)

// =============================================================================
// Scores Service Test Suite
// =============================================================================

type ScoresServiceSuite struct {
	suite.Suite
	store    *scores.InMemoryStore
	auditLog *audit.InMemoryStore
	service  *Service
	ctx      context.Context

	archerID id.ArcherID
}

func TestScoresServiceSuite(t *testing.T) {
	suite.Run(t, new(ScoresServiceSuite))
}

func (s *ScoresServiceSuite) SetupTest() {
	s.store = scores.NewInMemoryStore()
	s.auditLog = audit.NewInMemoryStore()
	s.archerID = id.ArcherID(uuid.New())

	ctx := requestcontext.WithArcherID(context.Background(), s.archerID)
	s.ctx = requestcontext.WithTime(ctx, time.Date(2026, 6, 14, 10, 30, 0, 0, time.UTC))

	var err error
	s.service, err = New(s.store, WithAudit(audit.NewPublisher(s.auditLog)))
	s.Require().NoError(err)
}

func (s *ScoresServiceSuite) input(total int, dateShot string) CreateInput {
	return CreateInput{
		ArcherID:    s.archerID,
		RoundID:     id.RoundID(uuid.New()),
		EquipmentID: id.EquipmentID(uuid.New()),
		DateShot:    dateShot,
		TotalScore:  total,
	}
}

func (s *ScoresServiceSuite) TestCreate() {
	s.Run("persists a totals-only historical entry", func() {
		created, err := s.service.Create(s.ctx, s.input(540, "2019-08-03"))
		s.Require().NoError(err)
		s.Equal(540, created.TotalScore)
		s.Equal("2019-08-03", created.DateShot.Format("2006-01-02"))

		found, err := s.service.GetByID(s.ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(created.ID, found.ID)
	})

	s.Run("empty date defaults to the request clock", func() {
		created, err := s.service.Create(s.ctx, s.input(310, ""))
		s.Require().NoError(err)
		s.Equal("2026-06-14", created.DateShot.Format("2006-01-02"))
	})

	s.Run("malformed date is a bad request", func() {
		_, err := s.service.Create(s.ctx, s.input(540, "03/08/2019"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("negative total is rejected", func() {
		_, err := s.service.Create(s.ctx, s.input(-1, "2019-08-03"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidScore))
	})

	s.Run("leaves an audit trail naming the caller", func() {
		created, err := s.service.Create(s.ctx, s.input(600, "2020-01-15"))
		s.Require().NoError(err)

		events := s.auditLog.Events()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionScoreCreated, last.Action)
		s.Equal(s.archerID.String(), last.ActorID)
		s.Equal(created.ID.String(), last.Subject)
	})
}

func (s *ScoresServiceSuite) TestGetByID() {
	_, err := s.service.GetByID(s.ctx, id.ScoreID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ScoresServiceSuite) TestListByArcher() {
	_, err := s.service.Create(s.ctx, s.input(500, "2026-01-10"))
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, s.input(520, "2026-03-22"))
	s.Require().NoError(err)

	list, err := s.service.ListByArcher(s.ctx, s.archerID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(520, list[0].TotalScore, "newest shot first")

	empty, err := s.service.ListByArcher(s.ctx, id.ArcherID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(empty)
}
