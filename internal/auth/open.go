package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store kinds accepted by OpenStore.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// StoreOptions selects and configures a Store backend.
type StoreOptions struct {
	Kind        string
	SQLitePath  string
	PostgresDSN string
}

// OpenStore builds the configured Store and ensures its schema. The returned
// close function releases any database handle.
func OpenStore(ctx context.Context, opts StoreOptions) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", StoreMemory:
		return NewMemoryStore(), noop, nil
	case StoreSQLite:
		if opts.SQLitePath == "" {
			return nil, nil, fmt.Errorf("sqlite store requires a path")
		}
		if err := os.MkdirAll(filepath.Dir(opts.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		store, err := OpenSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ensure sqlite schema: %w", err)
		}
		return store, store.Close, nil
	case StorePostgres:
		if opts.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres store requires a dsn")
		}
		pool, err := pgxpool.New(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return store, func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown user store %q", opts.Kind)
	}
}
