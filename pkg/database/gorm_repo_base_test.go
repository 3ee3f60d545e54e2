package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entitygraph/core/pkg/ids"
)

func TestGormRepository_Exists(t *testing.T) {
	tdb := NewTestDB(t)
	t.Logf("Temp test DB name %s", tdb.DBName)
	defer tdb.Cleanup(t)

	classRepo := NewClassRepository(tdb.DB)

	t.Run("success - returns true for existing entity", func(t *testing.T) {
		ctx := context.Background()

		id, err := classRepo.NextID(ctx)
		require.NoError(t, err)

		class := createTestClass(t, id)
		require.NoError(t, classRepo.Create(ctx, class))

		exists, err := classRepo.Exists(ctx, class.ID)
		require.NoError(t, err)
		assert.True(t, exists, "should return true for an existing class id")
	})

	t.Run("success - returns false for non-existent entity", func(t *testing.T) {
		ctx := context.Background()

		exists, err := classRepo.Exists(ctx, ids.ClassID(999999))
		require.NoError(t, err)
		assert.False(t, exists, "should return false for a non-existent class id")
	})
}

func TestGormRepository_NextID_Monotonic(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Cleanup(t)

	entityRepo := NewEntityRepository(tdb.DB)

	ctx := context.Background()
	first, err := entityRepo.NextID(ctx)
	require.NoError(t, err)
	second, err := entityRepo.NextID(ctx)
	require.NoError(t, err)

	assert.Less(t, uint64(first), uint64(second), "ids issued from the same sequence must strictly increase")
}

func TestGormRepository_Get_NotFound(t *testing.T) {
	tdb := NewTestDB(t)
	defer tdb.Cleanup(t)

	classRepo := NewClassRepository(tdb.DB)

	_, err := classRepo.Get(context.Background(), ids.ClassID(999999))
	require.Error(t, err)
}
