package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryUser struct {
	id           string
	email        string
	name         string
	role         string
	passwordHash string
}

type memory struct {
	mu       sync.Mutex
	users    map[string]memoryUser
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewMemory creates an in-process provider seeded with a single admin account.
// Sessions live in memory and are lost on restart.
func NewMemory(cfg *Config, logger *slog.Logger) (Provider, error) {
	hash, err := HashPassword(cfg.SeedPassword)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	seed := memoryUser{
		id:           uuid.NewString(),
		email:        strings.ToLower(cfg.SeedEmail),
		name:         cfg.SeedName,
		role:         "admin",
		passwordHash: hash,
	}

	return &memory{
		users:    map[string]memoryUser{seed.email: seed},
		sessions: make(map[string]Session),
		ttl:      cfg.SessionTTLDuration(),
		now:      time.Now,
		logger:   logger.With("system", "auth", "provider", ProviderMemory),
	}, nil
}

func (m *memory) Name() string {
	return ProviderMemory
}

func (m *memory) Session(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	if s.Expired(m.now()) {
		delete(m.sessions, token)
		return nil, ErrNoSession
	}
	return &s, nil
}

func (m *memory) SignIn(_ context.Context, email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok || !CheckPassword(password, u.passwordHash) {
		m.logger.Info("sign-in rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	s := Session{
		Token:  uuid.NewString(),
		UserID: u.id,
		Email:  u.email,
		Role:   u.role,
	}
	now := m.now()
	if m.ttl > 0 {
		s.ExpiresAt = now.Add(m.ttl)
	}
	m.prune(now)
	m.sessions[s.Token] = s

	m.logger.Info("session created", "user_id", s.UserID)
	return &s, nil
}

// prune drops expired sessions. Callers hold m.mu.
func (m *memory) prune(now time.Time) {
	for token, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, token)
		}
	}
}

func (m *memory) SignOut(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}
