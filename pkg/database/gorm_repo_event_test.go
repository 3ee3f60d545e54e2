package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/entitygraph/core/pkg/ids"
)

func TestEventRepository(t *testing.T) {
	testDB := NewTestDB(t)
	defer testDB.Cleanup(t)
	repo := NewEventRepository(testDB.DB)

	t.Run("Create", func(t *testing.T) {
		ctx := context.Background()
		classID := ids.ClassID(1)
		event, err := domain.NewEvent(domain.EventTypeClassCreated, domain.WithClass(classID))
		require.NoError(t, err)

		err = repo.Create(ctx, event)
		require.NoError(t, err)
		assert.NotEmpty(t, event.ID)
		assert.NotZero(t, event.CreatedAt)
		assert.NotZero(t, event.SequenceNumber)
	})

	t.Run("ListFromSequence", func(t *testing.T) {
		ctx := context.Background()

		var last int64
		for i := 0; i < 3; i++ {
			event, err := domain.NewEvent(domain.EventTypeCuratorGroupAdded, domain.WithCuratorGroup(ids.CuratorGroupID(i+1)))
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, event))
			last = event.SequenceNumber
		}

		events, err := repo.ListFromSequence(ctx, last-1, 10)
		require.NoError(t, err)
		require.NotEmpty(t, events)
		for _, e := range events {
			assert.Greater(t, e.SequenceNumber, last-1)
		}
	})

	t.Run("ListFromSequence respects limit", func(t *testing.T) {
		ctx := context.Background()

		events, err := repo.ListFromSequence(ctx, 0, 1)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(events), 1)
	})
}
