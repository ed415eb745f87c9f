package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists users in a PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the users table when it does not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS login_users (
	email         TEXT PRIMARY KEY,
	password_hash BYTEA NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Lookup fetches a user by email.
func (s *PostgresStore) Lookup(ctx context.Context, email string) (User, error) {
	const query = `SELECT email, password_hash, created_at FROM login_users WHERE email = $1`
	var u User
	err := s.pool.QueryRow(ctx, query, NormalizeEmail(email)).Scan(&u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Create inserts user, returning ErrUserExists on a duplicate email.
func (s *PostgresStore) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO login_users (email, password_hash)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING`
	tag, err := s.pool.Exec(ctx, query, NormalizeEmail(user.Email), user.PasswordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserExists
	}
	return nil
}

// List returns users ordered by email.
func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT email, password_hash, created_at FROM login_users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
