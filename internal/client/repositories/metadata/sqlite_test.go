package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyReturnTo, []byte("/matches/42")))

	v, err := r.Get(ctx, KeyReturnTo)
	require.NoError(t, err)
	require.Equal(t, []byte("/matches/42"), v)
}

func TestGet_MissingKeyReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyLastUser, []byte(`{"id":"u1"}`)))
	require.NoError(t, r.Set(ctx, KeyLastUser, []byte(`{"id":"u2"}`)))

	v, err := r.Get(ctx, KeyLastUser)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"u2"}`), v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyReturnTo, []byte("/x")))
	require.NoError(t, r.Delete(ctx, KeyReturnTo))

	v, err := r.Get(ctx, KeyReturnTo)
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, KeyReturnTo))
}

func TestClear_RemovesEverything(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyReturnTo, []byte("/x")))
	require.NoError(t, r.Set(ctx, KeyLastUser, []byte("{}")))
	require.NoError(t, r.Clear(ctx))

	v, err := r.Get(ctx, KeyReturnTo)
	require.NoError(t, err)
	require.Nil(t, v)
	v, err = r.Get(ctx, KeyLastUser)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
}
