package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todos/internal/apperr"
)

func TestAddTodo_AssignsIDs(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)

		first := mustAdd(t, s, "buy milk", true)
		second := mustAdd(t, s, "walk dog", false)

		assert.Equal(t, Todo{ID: 1, Text: "buy milk", Active: true}, first)
		assert.Equal(t, Todo{ID: 2, Text: "walk dog", Active: false}, second)
	})
}

func TestAddTodo_RoundTrip(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)

		inputs := []NewTodo{
			{Text: "a", Active: true},
			{Text: "ünïcødé ✓", Active: false},
			{Text: `quotes ' and " survive`, Active: true},
		}

		seen := map[int64]bool{}
		for _, in := range inputs {
			added, err := s.AddTodo(ctx, nil, in)
			require.NoError(t, err)
			assert.False(t, seen[added.ID], "id %d reused", added.ID)
			seen[added.ID] = true

			todos, err := s.GetTodos(ctx, nil)
			require.NoError(t, err)
			assert.Contains(t, todos, Todo{ID: added.ID, Text: in.Text, Active: in.Active})
		}
	})
}

func TestAddTodo_IDsNeverReused(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)

		mustAdd(t, s, "one", true)
		two := mustAdd(t, s, "two", true)

		_, err := s.DeleteTodo(ctx, nil, two.ID)
		require.NoError(t, err)

		three := mustAdd(t, s, "three", true)
		assert.Equal(t, int64(3), three.ID)
	})
}

func TestUpdateTodo(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)
		added := mustAdd(t, s, "draft", true)
		other := mustAdd(t, s, "untouched", true)

		updated, err := s.UpdateTodo(ctx, nil, Todo{ID: added.ID, Text: "final", Active: false})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)

		todos, err := s.GetTodos(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []Todo{
			{ID: added.ID, Text: "final", Active: false},
			other,
		}, todos)
	})
}

func TestUpdateTodo_SameValuesStillCounts(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		s := createTestStore(t, driver)
		added := mustAdd(t, s, "same", true)

		updated, err := s.UpdateTodo(context.Background(), nil, added)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)
	})
}

func TestUpdateTodo_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)
		mustAdd(t, s, "exists", true)

		updated, err := s.UpdateTodo(ctx, nil, Todo{ID: 999, Text: "x", Active: false})

		require.Error(t, err)
		assert.Equal(t, int64(0), updated)
		assert.True(t, apperr.IsNotFound(err))
		assert.Equal(t, "Failed to update todo with id=999", err.Error())

		todos, err := s.GetTodos(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []Todo{{ID: 1, Text: "exists", Active: true}}, todos)
	})
}

func TestDeleteTodo(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)
		keep := mustAdd(t, s, "keep", true)
		drop := mustAdd(t, s, "drop", false)

		deleted, err := s.DeleteTodo(ctx, nil, drop.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		todos, err := s.GetTodos(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []Todo{keep}, todos)
	})
}

func TestDeleteTodo_NotFound(t *testing.T) {
	forEachDriver(t, func(t *testing.T, driver string) {
		ctx := context.Background()
		s := createTestStore(t, driver)
		added := mustAdd(t, s, "once", true)

		_, err := s.DeleteTodo(ctx, nil, added.ID)
		require.NoError(t, err)

		deleted, err := s.DeleteTodo(ctx, nil, added.ID)
		require.Error(t, err)
		assert.Equal(t, int64(0), deleted)
		assert.True(t, apperr.IsNotFound(err))
		assert.Equal(t, "Failed to delete todo with id=1", err.Error())
	})
}

func TestWrites_OnClosedHandleFailWithStoreError(t *testing.T) {
	s := createTestStore(t, DriverMattn)
	mustAdd(t, s, "x", true)

	// Close the handle underneath the store so statements fail.
	require.NoError(t, s.db.Close())

	_, err := s.AddTodo(context.Background(), nil, NewTodo{Text: "y", Active: true})
	require.Error(t, err)
	assert.True(t, apperr.IsStore(err))
	assert.Contains(t, err.Error(), "insert todo")

	_, err = s.UpdateTodo(context.Background(), nil, Todo{ID: 1, Text: "y"})
	assert.True(t, apperr.IsStore(err))

	_, err = s.DeleteTodo(context.Background(), nil, 1)
	assert.True(t, apperr.IsStore(err))

	s.db = nil
}
