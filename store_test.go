package session_test

import (
	"context"
	"testing"

	session "github.com/mentorhub/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero(), "a fresh store loads an empty record")

	saved := session.Record{
		AccessToken: "t1",
		User:        `{"username":"a"}`,
		Role:        "student",
		UserName:    "a",
	}
	require.NoError(t, store.Save(ctx, saved))

	rec, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, rec)

	require.NoError(t, store.Clear(ctx))

	rec, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero())
}

func TestMemoryStoreSaveOverwritesAllFields(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.NoError(t, store.Save(ctx, session.Record{
		AccessToken: "t1",
		User:        `{"username":"a"}`,
		Role:        "student",
		UserName:    "a",
	}))
	require.NoError(t, store.Save(ctx, session.Record{
		AccessToken: "t2",
		UserName:    "b",
	}))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", rec.AccessToken)
	assert.Equal(t, "b", rec.UserName)
	assert.Empty(t, rec.User, "save replaces every field, it never merges")
	assert.Empty(t, rec.Role)
}
