package test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/melodic-ai/melodic/store"
)

func TestUserContextUpsert(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	got, err := ts.GetUserContext(ctx, &store.FindUserContext{SessionID: "session-1"})
	require.NoError(t, err)
	require.Nil(t, got)

	created, err := ts.UpsertUserContext(ctx, &store.UpsertUserContext{
		SessionID:     "session-1",
		Context:       map[string]string{"name": "Alice"},
		LastUpdatedTs: 1000,
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int32(0))

	updated, err := ts.UpsertUserContext(ctx, &store.UpsertUserContext{
		SessionID:     "session-1",
		Context:       map[string]string{"name": "Bob"},
		LastUpdatedTs: 2000,
	})
	require.NoError(t, err)
	// The conflict path updated in place instead of inserting.
	require.Equal(t, created.ID, updated.ID)

	got, err = ts.GetUserContext(ctx, &store.FindUserContext{SessionID: "session-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, map[string]string{"name": "Bob"}, got.Context)
	require.Equal(t, int64(2000), got.LastUpdatedTs)
}

func TestUserContextConcurrentUpsert(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.UpsertUserContext(ctx, &store.UpsertUserContext{
				SessionID:     "session-1",
				Context:       map[string]string{"name": "Alice"},
				LastUpdatedTs: 1000,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// The unique session constraint plus the single-statement upsert leave
	// exactly one row, never a duplicate-key failure.
	got, err := ts.GetUserContext(ctx, &store.FindUserContext{SessionID: "session-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Alice", got.Context["name"])
}

func TestUserContextEmptyMap(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.UpsertUserContext(ctx, &store.UpsertUserContext{
		SessionID:     "session-1",
		Context:       map[string]string{},
		LastUpdatedTs: 1000,
	})
	require.NoError(t, err)

	got, err := ts.GetUserContext(ctx, &store.FindUserContext{SessionID: "session-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got.Context)
}
