package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps users in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryStore constructs a MemoryStore seeded with users.
func NewMemoryStore(users ...User) *MemoryStore {
	m := &MemoryStore{users: make(map[string]User, len(users))}
	for _, u := range users {
		u.Email = NormalizeEmail(u.Email)
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		m.users[u.Email] = u
	}
	return m
}

// EnsureSchema satisfies the Store interface. No-op for memory store.
func (m *MemoryStore) EnsureSchema(context.Context) error {
	return nil
}

// Lookup returns the user registered under email or ErrNotFound.
func (m *MemoryStore) Lookup(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Create stores user unless the email is already taken.
func (m *MemoryStore) Create(_ context.Context, user User) error {
	user.Email = NormalizeEmail(user.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	m.users[user.Email] = user
	return nil
}

// List returns users ordered by email.
func (m *MemoryStore) List(context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
