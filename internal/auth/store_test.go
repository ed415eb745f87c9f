package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	_, err := store.Lookup(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, User{Email: "B@example.com", PasswordHash: hash}))
	require.NoError(t, store.Create(ctx, User{Email: "a@example.com", PasswordHash: hash}))
	assert.ErrorIs(t, store.Create(ctx, User{Email: "b@EXAMPLE.com", PasswordHash: hash}), ErrUserExists)

	u, err := store.Lookup(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", u.Email)
	assert.True(t, checkPassword(u.PasswordHash, "secret1"))
	assert.False(t, u.CreatedAt.IsZero())

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "b@example.com", users[1].Email)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	exerciseStore(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("LOGINFORM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LOGINFORM_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, closeStore, err := OpenStore(ctx, StoreOptions{Kind: StorePostgres, PostgresDSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { closeStore() })
	pg := store.(*PostgresStore)
	_, err = pg.pool.Exec(ctx, `DELETE FROM login_users`)
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := OpenStore(ctx, StoreOptions{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	require.NoError(t, closeStore())

	path := filepath.Join(t.TempDir(), "nested", "users.db")
	store, closeStore, err = OpenStore(ctx, StoreOptions{Kind: "SQLite", SQLitePath: path})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, closeStore())
	assert.FileExists(t, path)

	_, _, err = OpenStore(ctx, StoreOptions{Kind: StoreSQLite})
	assert.Error(t, err)
	_, _, err = OpenStore(ctx, StoreOptions{Kind: StorePostgres})
	assert.Error(t, err)
	_, _, err = OpenStore(ctx, StoreOptions{Kind: "redis"})
	assert.Error(t, err)
}
