// Package accounts persists admin accounts and the bootstrap super-admin.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
)

// StorageKey is where the account list is persisted.
const StorageKey = "briefdesk_admin_users"

var (
	ErrNotFound         = errors.New("admin not found")
	ErrDuplicateEmail   = errors.New("admin email already exists")
	ErrProtectedAccount = errors.New("bootstrap super-admin cannot be removed")
	ErrInvalidInput     = errors.New("invalid admin input")
)

// Bootstrap identifies the super-admin that always exists. An empty Password
// makes EnsureBootstrapAdmin generate one.
type Bootstrap struct {
	Email    string
	Password string
	Name     string
}

// NewAdmin is the input for Add.
type NewAdmin struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
}

// Store manages the admin account list. The whole list is stored as one
// encoded blob, so writes are serialized by a mutex.
type Store struct {
	kv        config.KV
	bootstrap Bootstrap
	logger    *slog.Logger
	now       func() time.Time
	generated func(email, password string)
	mu        sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt and LastLoginAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithGeneratedPassword registers fn to receive a bootstrap password that
// EnsureBootstrapAdmin had to generate. The password is never logged.
func WithGeneratedPassword(fn func(email, password string)) Option {
	return func(s *Store) { s.generated = fn }
}

// NewStore creates an account store over kv.
func NewStore(kv config.KV, bootstrap Bootstrap, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:        kv,
		bootstrap: bootstrap,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BootstrapEmail returns the email of the protected super-admin.
func (s *Store) BootstrapEmail() string {
	return s.bootstrap.Email
}

// List returns every stored account. Missing or unreadable data reads as an
// empty list.
func (s *Store) List(ctx context.Context) ([]model.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

func (s *Store) list(ctx context.Context) ([]model.AdminUser, error) {
	var users []model.AdminUser
	err := config.GetObject(ctx, s.kv, StorageKey, &users)
	switch {
	case err == nil:
		return users, nil
	case errors.Is(err, config.ErrNotFound):
		return []model.AdminUser{}, nil
	case errors.Is(err, secure.ErrDecode):
		s.logger.Error("admin account data unreadable, treating as empty", "error", err)
		return []model.AdminUser{}, nil
	default:
		return nil, fmt.Errorf("load admins: %w", err)
	}
}

func (s *Store) save(ctx context.Context, users []model.AdminUser) error {
	if err := config.PutObject(ctx, s.kv, StorageKey, users); err != nil {
		return fmt.Errorf("save admins: %w", err)
	}
	return nil
}

// Find returns the account with exactly this email.
func (s *Store) Find(ctx context.Context, email string) (*model.AdminUser, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add creates a new account with a fresh salt and hash.
func (s *Store) Add(ctx context.Context, in NewAdmin) (*model.AdminUser, error) {
	if err := validate(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == in.Email {
			return nil, ErrDuplicateEmail
		}
	}

	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, append(users, *user)); err != nil {
		return nil, err
	}
	return user, nil
}

// Remove deletes the account with this email. The bootstrap super-admin is
// never removed.
func (s *Store) Remove(ctx context.Context, email string) error {
	if email == s.bootstrap.Email {
		return ErrProtectedAccount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.list(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.AdminUser, 0, len(users))
	for _, u := range users {
		if u.Email != email {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

// RecordLogin stamps LastLoginAt on the account.
func (s *Store) RecordLogin(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.list(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Email == email {
			at := s.now().UTC()
			users[i].LastLoginAt = &at
			return s.save(ctx, users)
		}
	}
	return ErrNotFound
}

// EnsureBootstrapAdmin inserts the bootstrap super-admin when it is missing.
// It reports whether the account was created.
func (s *Store) EnsureBootstrapAdmin(ctx context.Context) (bool, error) {
	if s.bootstrap.Email == "" {
		return false, fmt.Errorf("%w: bootstrap email is not configured", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.list(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Email == s.bootstrap.Email {
			return false, nil
		}
	}

	password := s.bootstrap.Password
	generated := password == ""
	if generated {
		password, err = secure.GenerateSalt(16)
		if err != nil {
			return false, err
		}
	}

	name := s.bootstrap.Name
	if name == "" {
		name = "Super Admin"
	}
	user, err := s.newUser(NewAdmin{
		Email:    s.bootstrap.Email,
		Password: password,
		Name:     name,
		Role:     model.RoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}
	if err := s.save(ctx, append(users, *user)); err != nil {
		return false, err
	}

	if generated {
		s.logger.Warn("created bootstrap super-admin with a generated password; set bootstrap.password to choose one",
			"email", user.Email)
		if s.generated != nil {
			s.generated(user.Email, password)
		}
	} else {
		s.logger.Info("created bootstrap super-admin", "email", user.Email)
	}
	return true, nil
}

func (s *Store) newUser(in NewAdmin) (*model.AdminUser, error) {
	salt, err := secure.GenerateSalt(secure.DefaultSaltLength)
	if err != nil {
		return nil, err
	}
	return &model.AdminUser{
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		CreatedAt:    s.now().UTC(),
		PasswordSalt: salt,
		PasswordHash: secure.HashPassword(in.Password, salt),
	}, nil
}

func validate(in *NewAdmin) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = model.RoleAdmin
	}

	switch {
	case !secure.ValidEmail(in.Email):
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, in.Email)
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case len([]rune(in.Password)) < secure.MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, secure.MinPasswordLength)
	case !in.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	return nil
}
