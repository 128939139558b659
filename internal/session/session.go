// Package session keeps the single current admin session in storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
)

// StorageKey is where the current session is persisted.
const StorageKey = "briefdesk_current_admin"

// DefaultWindow is how long a session stays valid after it is created.
const DefaultWindow = 120 * time.Minute

// ErrNoSession is returned when there is no valid session.
var ErrNoSession = errors.New("no active session")

// Manager creates, reads and clears the session slot. There is at most one
// session; creating a new one replaces the old. The mutex keeps an expiry
// purge in Get from deleting a session written by a concurrent Create.
type Manager struct {
	kv     config.KV
	logger *slog.Logger
	now    func() time.Time
	window time.Duration
	mu     sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithWindow overrides the session validity window.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithLogger sets the logger used for unreadable session data.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a session manager over kv.
func NewManager(kv config.KV, opts ...Option) *Manager {
	m := &Manager{
		kv:     kv,
		logger: slog.Default(),
		now:    time.Now,
		window: DefaultWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Window returns the session validity window.
func (m *Manager) Window() time.Duration {
	return m.window
}

// Create starts a session for user, replacing any existing one.
func (m *Manager) Create(ctx context.Context, user model.AdminUser) (*model.AdminSession, error) {
	token, err := secure.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &model.AdminSession{
		User:      user.Public(),
		Token:     token,
		CreatedAt: m.now().UTC(),
	}
	if err := config.PutObject(ctx, m.kv, StorageKey, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Get returns the current session. An expired or unreadable session is
// cleared and reported as ErrNoSession.
func (m *Manager) Get(ctx context.Context) (*model.AdminSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sess model.AdminSession
	err := config.GetObject(ctx, m.kv, StorageKey, &sess)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrNotFound):
		return nil, ErrNoSession
	case errors.Is(err, secure.ErrDecode):
		m.logger.Warn("session data unreadable, clearing", "error", err)
		if err := m.clear(ctx); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}

	if secure.IsTokenExpired(sess.CreatedAt, m.window, m.now()) {
		m.logger.Info("session expired", "email", sess.User.Email)
		if err := m.clear(ctx); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Clear removes the session. It is safe to call when there is none.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear(ctx)
}

func (m *Manager) clear(ctx context.Context) error {
	if err := m.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
