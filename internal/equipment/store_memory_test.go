package equipment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "quiverbook/pkg/domain"
	"quiverbook/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and lists sorted by name", func(t *testing.T) {
		store := NewInMemoryStore()
		for _, name := range []string{"Recurve", "Barebow", "Compound"} {
			eq, err := NewEquipment(id.EquipmentID(uuid.New()), name)
			require.NoError(t, err)
			require.NoError(t, store.Create(ctx, eq))
		}

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Barebow", list[0].Name)
		assert.Equal(t, "Compound", list[1].Name)
		assert.Equal(t, "Recurve", list[2].Name)
	})

	t.Run("names are unique case-insensitively", func(t *testing.T) {
		store := NewInMemoryStore()
		eq, err := NewEquipment(id.EquipmentID(uuid.New()), "Recurve")
		require.NoError(t, err)
		require.NoError(t, store.Create(ctx, eq))

		dup, err := NewEquipment(id.EquipmentID(uuid.New()), "recurve")
		require.NoError(t, err)
		assert.ErrorIs(t, store.Create(ctx, dup), sentinel.ErrAlreadyUsed)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.FindByID(ctx, id.EquipmentID(uuid.New()))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
