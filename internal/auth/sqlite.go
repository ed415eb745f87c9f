package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists users in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection avoids SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the users table when it does not already exist.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS login_users (
	email         TEXT PRIMARY KEY,
	password_hash BLOB NOT NULL,
	created_at    TEXT NOT NULL
);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Lookup fetches a user by email.
func (s *SQLiteStore) Lookup(ctx context.Context, email string) (User, error) {
	const query = `SELECT email, password_hash, created_at FROM login_users WHERE email = ?`
	var (
		u       User
		created string
	)
	err := s.db.QueryRowContext(ctx, query, NormalizeEmail(email)).Scan(&u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return u, nil
}

// Create inserts user, returning ErrUserExists on a duplicate email.
func (s *SQLiteStore) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO login_users (email, password_hash, created_at)
VALUES (?, ?, ?)
ON CONFLICT (email) DO NOTHING`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, query, NormalizeEmail(user.Email), user.PasswordHash, user.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

// List returns users ordered by email.
func (s *SQLiteStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, password_hash, created_at FROM login_users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var (
			u       User
			created string
		)
		if err := rows.Scan(&u.Email, &u.PasswordHash, &created); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		users = append(users, u)
	}
	return users, rows.Err()
}
