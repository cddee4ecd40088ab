//go:build integration

package scores_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quiverbook/internal/scores"
	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
	"quiverbook/pkg/testutil/containers"
)

type ScoresPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *scores.PostgresStore

	archerID    id.ArcherID
	roundID     id.RoundID
	equipmentID id.EquipmentID
}

func TestScoresPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ScoresPostgresSuite))
}

func (s *ScoresPostgresSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = scores.NewPostgres(s.postgres.DB)
}

func (s *ScoresPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"arrows", "ends", "scores", "competitions", "equipment", "rounds", "archers"))

	s.archerID = id.ArcherID(uuid.New())
	s.roundID = id.RoundID(uuid.New())
	s.equipmentID = id.EquipmentID(uuid.New())

	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO archers (id, first_name, last_name, email, joined_at)
		VALUES ($1, 'Theo', 'Marsh', '', NOW())
	`, s.archerID.String())
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx, `
		INSERT INTO rounds (id, name, ranges) VALUES ($1, 'Portsmouth', '[]'::jsonb)
	`, s.roundID.String())
	s.Require().NoError(err)
	_, err = s.postgres.DB.ExecContext(ctx, `
		INSERT INTO equipment (id, name) VALUES ($1, 'Compound')
	`, s.equipmentID.String())
	s.Require().NoError(err)
}

func (s *ScoresPostgresSuite) newScore(total int, dateShot time.Time, ends []scores.End) *scores.Score {
	score, err := scores.NewScore(id.ScoreID(uuid.New()), s.archerID, s.roundID,
		s.equipmentID, nil, dateShot, total, ends)
	s.Require().NoError(err)
	return score
}

func (s *ScoresPostgresSuite) TestHierarchyRoundTrip() {
	ctx := context.Background()
	rangeID := id.RangeID(uuid.New())

	end1, err := scores.NewEnd(id.EndID(uuid.New()), 1, rangeID,
		[]scoring.ArrowValue{"X", "9", "M"})
	s.Require().NoError(err)
	end2, err := scores.NewEnd(id.EndID(uuid.New()), 2, rangeID,
		[]scoring.ArrowValue{"10", "8", "7"})
	s.Require().NoError(err)

	score := s.newScore(44, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		[]scores.End{end1, end2})
	s.Require().NoError(s.store.Create(ctx, score))

	found, err := s.store.FindByID(ctx, score.ID)
	s.Require().NoError(err)
	s.Equal(44, found.TotalScore)
	s.Nil(found.CompetitionID)

	s.Require().Len(found.Ends, 2)
	s.Equal(1, found.Ends[0].Number)
	s.Equal(19, found.Ends[0].EndScore)
	s.Require().Len(found.Ends[0].Arrows, 3)
	s.Equal(scoring.InnerTen, found.Ends[0].Arrows[0].Value)
	s.True(found.Ends[0].Arrows[0].InnerTen)
	s.Equal(scoring.ArrowValue("10"), found.Ends[1].Arrows[0].Value)
	s.False(found.Ends[1].Arrows[0].InnerTen)
}

func (s *ScoresPostgresSuite) TestListByArcher() {
	ctx := context.Background()

	older := s.newScore(540, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), nil)
	newer := s.newScore(575, time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC), nil)
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))

	list, err := s.store.ListByArcher(ctx, s.archerID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
	s.Empty(list[0].Ends, "list views carry totals only")

	other, err := s.store.ListByArcher(ctx, id.ArcherID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *ScoresPostgresSuite) TestNotFound() {
	_, err := s.store.FindByID(context.Background(), id.ScoreID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
