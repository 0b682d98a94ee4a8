package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/melodic-ai/melodic/store"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateUser(ctx, &store.User{
		Username:     "alice",
		PasswordHash: "$2a$10$fakehash",
		CreatedTs:    1000,
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int32(0))

	byName, err := ts.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, created.ID, byName.ID)

	byID, err := ts.GetUser(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	require.Equal(t, "alice", byID.Username)

	missing, err := ts.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)

	// Usernames are unique.
	_, err = ts.CreateUser(ctx, &store.User{
		Username:     "alice",
		PasswordHash: "$2a$10$otherhash",
		CreatedTs:    2000,
	})
	require.Error(t, err)
}
