package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Its-donkey/loginform/internal/ui/forms"
	"github.com/Its-donkey/loginform/internal/ui/model"
	"github.com/Its-donkey/loginform/logging"
)

const (
	defaultTokenTTL      = 12 * time.Hour
	defaultRejectMessage = "Invalid credentials"
	defaultOutageMessage = "Login is temporarily unavailable"
	logCategory          = "auth"
)

// Token identifies an authenticated session.
type Token struct {
	Value     string
	Email     string
	ExpiresAt time.Time
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	TokenTTL time.Duration
	// RejectMessage is the reason reported to the login form for bad
	// credentials.
	RejectMessage string
	// OutageMessage is reported when the store itself fails.
	OutageMessage string
	Logger        *logging.Logger
	Now           func() time.Time
}

// Manager verifies credentials and issues session tokens.
type Manager struct {
	store         Store
	ttl           time.Duration
	rejectMessage string
	outageMessage string
	logger        *logging.Logger
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]Token
}

// NewManager constructs a Manager backed by store.
func NewManager(store Store, opts ManagerOptions) *Manager {
	m := &Manager{
		store:         store,
		ttl:           opts.TokenTTL,
		rejectMessage: strings.TrimSpace(opts.RejectMessage),
		outageMessage: strings.TrimSpace(opts.OutageMessage),
		logger:        opts.Logger,
		now:           opts.Now,
		sessions:      make(map[string]Token),
	}
	if m.ttl <= 0 {
		m.ttl = defaultTokenTTL
	}
	if m.rejectMessage == "" {
		m.rejectMessage = defaultRejectMessage
	}
	if m.outageMessage == "" {
		m.outageMessage = defaultOutageMessage
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Register hashes password and stores a new user.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := m.store.Create(ctx, User{Email: email, PasswordHash: hash}); err != nil {
		return fmt.Errorf("register %s: %w", NormalizeEmail(email), err)
	}
	return nil
}

// Login checks the credentials and issues a session token.
func (m *Manager) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := m.store.Lookup(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		checkPassword(decoyHash, password)
		return Token{}, ErrInvalidCredentials
	case err != nil:
		return Token{}, fmt.Errorf("lookup user: %w", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return Token{}, ErrInvalidCredentials
	}
	// Nobody is left to receive a token once the caller has given up.
	if err := ctx.Err(); err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}

	token := Token{
		Value:     uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[token.Value] = token
	m.mu.Unlock()
	return token, nil
}

// Validate returns the session for value when it exists and has not expired.
func (m *Manager) Validate(value string) (Token, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Token{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.sessions[value]
	if !ok {
		return Token{}, false
	}
	if !m.now().Before(token.ExpiresAt) {
		delete(m.sessions, value)
		return Token{}, false
	}
	return token, true
}

// PruneExpired drops every session past its deadline and returns how many
// were removed.
func (m *Manager) PruneExpired() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for value, token := range m.sessions {
		if !now.Before(token.ExpiresAt) {
			delete(m.sessions, value)
			removed++
		}
	}
	return removed
}

// Logout forgets the session.
func (m *Manager) Logout(value string) {
	m.mu.Lock()
	delete(m.sessions, value)
	m.mu.Unlock()
}

// SubmitHandler adapts Login to the login form collaborator contract.
// issued, when non-nil, receives the token of every successful login.
func (m *Manager) SubmitHandler(issued func(Token)) forms.SubmitHandler {
	return func(ctx context.Context, creds model.Credentials) error {
		token, err := m.Login(ctx, creds.Email, creds.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				m.logger.Warn(logCategory, "login rejected", map[string]any{"email": NormalizeEmail(creds.Email)})
				return errors.New(m.rejectMessage)
			}
			m.logger.Error(logCategory, "login failed", err, map[string]any{"email": NormalizeEmail(creds.Email)})
			return errors.New(m.outageMessage)
		}
		m.logger.Info(logCategory, "login successful", map[string]any{"email": token.Email})
		if issued != nil {
			issued(token)
		}
		return nil
	}
}
