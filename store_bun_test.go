package session_test

import (
	"context"
	"database/sql"
	"testing"

	session "github.com/mentorhub/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupBunStore(t *testing.T, slot string) *session.BunStore {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewBunStore(bun.NewDB(db, sqlitedialect.New()), slot)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestBunStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupBunStore(t, "")

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero(), "missing row loads as an empty record")

	saved := session.Record{
		AccessToken: "t1",
		User:        `{"username":"a","role":"student"}`,
		Role:        "student",
		UserName:    "a",
	}
	require.NoError(t, store.Save(ctx, saved))

	rec, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, rec)
}

func TestBunStoreSaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := setupBunStore(t, "")

	require.NoError(t, store.Save(ctx, session.Record{AccessToken: "t1", User: `{}`, Role: "student", UserName: "a"}))
	require.NoError(t, store.Save(ctx, session.Record{AccessToken: "t2", User: `{}`, Role: "teacher", UserName: "b"}))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", rec.AccessToken)
	assert.Equal(t, "teacher", rec.Role)
	assert.Equal(t, "b", rec.UserName)
}

func TestBunStoreClear(t *testing.T) {
	ctx := context.Background()
	store := setupBunStore(t, "")

	require.NoError(t, store.Save(ctx, session.Record{AccessToken: "t1", User: `{}`, UserName: "a"}))
	require.NoError(t, store.Clear(ctx))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero())

	// Clearing an already empty slot stays quiet.
	require.NoError(t, store.Clear(ctx))
}

func TestBunStoreSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	bunDB := bun.NewDB(db, sqlitedialect.New())

	alpha := session.NewBunStore(bunDB, "alpha")
	require.NoError(t, alpha.Init(ctx))
	beta := session.NewBunStore(bunDB, "beta")

	require.NoError(t, alpha.Save(ctx, session.Record{AccessToken: "ta", User: `{}`, UserName: "a"}))
	require.NoError(t, beta.Save(ctx, session.Record{AccessToken: "tb", User: `{}`, UserName: "b"}))

	require.NoError(t, alpha.Clear(ctx))

	rec, err := beta.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tb", rec.AccessToken, "clearing one slot leaves the other intact")
}
