package scores

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiverbook/internal/scoring"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
)

func TestNewEnd(t *testing.T) {
	rangeID := id.RangeID(uuid.New())

	t.Run("derives end score and inner ten flags", func(t *testing.T) {
		end, err := NewEnd(id.EndID(uuid.New()), 1, rangeID,
			[]scoring.ArrowValue{"X", "10", "M"})
		require.NoError(t, err)

		assert.Equal(t, 20, end.EndScore)
		assert.True(t, end.Arrows[0].InnerTen)
		assert.False(t, end.Arrows[1].InnerTen, "a plain 10 is not an inner ten")
		assert.False(t, end.Arrows[2].InnerTen)
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		_, err := NewEnd(id.EndID(uuid.New()), 1, rangeID,
			[]scoring.ArrowValue{"9", "eleven"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArrowValue))
	})
}

func TestNewScore(t *testing.T) {
	archerID := id.ArcherID(uuid.New())
	roundID := id.RoundID(uuid.New())
	equipmentID := id.EquipmentID(uuid.New())
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	newEnd := func(t *testing.T, values ...scoring.ArrowValue) End {
		t.Helper()
		end, err := NewEnd(id.EndID(uuid.New()), 1, id.RangeID(uuid.New()), values)
		require.NoError(t, err)
		return end
	}

	t.Run("total must match the sum of end scores", func(t *testing.T) {
		end := newEnd(t, "9", "9") // 18
		_, err := NewScore(id.ScoreID(uuid.New()), archerID, roundID, equipmentID,
			nil, day, 20, []End{end})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidScore))

		score, err := NewScore(id.ScoreID(uuid.New()), archerID, roundID, equipmentID,
			nil, day, 18, []End{end})
		require.NoError(t, err)
		assert.Equal(t, 18, score.TotalScore)
	})

	t.Run("negative totals are rejected", func(t *testing.T) {
		_, err := NewScore(id.ScoreID(uuid.New()), archerID, roundID, equipmentID,
			nil, day, -1, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidScore))
	})

	t.Run("totals-only entry needs no ends", func(t *testing.T) {
		score, err := NewScore(id.ScoreID(uuid.New()), archerID, roundID, equipmentID,
			nil, day, 540, nil)
		require.NoError(t, err)
		assert.Equal(t, 540, score.TotalScore)
		assert.Empty(t, score.Ends)
	})
}
