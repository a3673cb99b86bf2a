package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressionRepository_AddXP(t *testing.T) {
	repo := NewProgressionRepository(setupTestDB(t))
	ctx := context.Background()

	none, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, none)

	p, err := repo.AddXP(ctx, "p1", 600, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(600), p.XP())
	assert.Equal(t, 0, p.Level())

	p, err = repo.AddXP(ctx, "p1", 1500, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(2100), p.XP())
	assert.Equal(t, 2, p.Level())

	stored, err := repo.GetByPlayerID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2100), stored.XP())
	assert.Equal(t, 2, stored.Level())
}
