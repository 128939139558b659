package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
	"github.com/briefdesk/briefdesk/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidToken       = errors.New("invalid or revoked token")
)

const tokenIssuer = "briefdesk"

// State is the current-user state of the auth service.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Principal is the identity behind a validated bearer token.
type Principal struct {
	User      model.PublicUser
	Session   string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// AuthService ties the account store and the session manager together and
// tracks who is currently logged in.
type AuthService struct {
	accounts  *accounts.Store
	sessions  *session.Manager
	limiter   *AttemptLimiter
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
	user  *model.PublicUser
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithLimiter replaces the default login attempt limiter.
func WithLimiter(l *AttemptLimiter) Option {
	return func(s *AuthService) { s.limiter = l }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *AuthService) { s.logger = l }
}

// WithClock overrides the time source used when validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates the auth service. It starts in the loading state
// until RestoreSession is called.
func NewAuthService(acc *accounts.Store, sessions *session.Manager, jwtSecret string, opts ...Option) *AuthService {
	s := &AuthService{
		accounts:  acc,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		logger:    slog.Default(),
		now:       time.Now,
		state:     StateLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewAttemptLimiter(DefaultMaxLoginAttempts)
	}
	return s
}

// Limiter returns the login attempt limiter.
func (s *AuthService) Limiter() *AttemptLimiter {
	return s.limiter
}

// Authenticate checks email and password against the account store. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.AdminUser, error) {
	if _, err := s.accounts.EnsureBootstrapAdmin(ctx); err != nil {
		return nil, fmt.Errorf("ensure bootstrap admin: %w", err)
	}

	user, err := s.accounts.Find(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !secure.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and starts a session for the given client key (the
// caller's remote address). Each call takes one of the client's attempts up
// front. A successful login gives them all back, and a client with none left
// is rejected before the password is checked.
func (s *AuthService) Login(ctx context.Context, client, email, password string) (*LoginResult, error) {
	if !s.limiter.Reserve(client) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Warn("admin login failed", "client", client, "email", email,
				"remaining_attempts", s.limiter.Remaining(client))
		} else {
			s.limiter.Release(client)
		}
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, *user)
	if err != nil {
		s.limiter.Release(client)
		return nil, err
	}
	s.limiter.Reset(client)

	if err := s.accounts.RecordLogin(ctx, user.Email); err != nil {
		s.logger.Warn("record last login failed", "email", user.Email, "error", err)
	}

	expires := sess.ExpiresAt(s.sessions.Window())
	token, err := s.issueToken(sess, expires)
	if err != nil {
		return nil, err
	}

	public := sess.User
	s.setState(StateAuthenticated, &public)
	s.logger.Info("admin logged in", "email", public.Email, "client", client)

	return &LoginResult{User: public, Token: token, ExpiresAt: expires}, nil
}

// Logout ends the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	s.setState(StateAnonymous, nil)
	return s.sessions.Clear(ctx)
}

// RestoreSession resolves the loading state from storage. It is called once
// at startup.
func (s *AuthService) RestoreSession(ctx context.Context) error {
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		s.setState(StateAnonymous, nil)
		if errors.Is(err, session.ErrNoSession) {
			return nil
		}
		return err
	}
	user := sess.User
	s.setState(StateAuthenticated, &user)
	return nil
}

// Current returns the current-user state and, when authenticated, the user.
func (s *AuthService) Current() (State, *model.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return s.state, nil
	}
	u := *s.user
	return s.state, &u
}

// ValidateToken verifies a bearer token and checks that it still refers to
// the stored session.
func (s *AuthService) ValidateToken(ctx context.Context, bearer string) (*Principal, error) {
	claims := &tokenClaims{}
	token, parseErr := jwt.ParseWithClaims(bearer, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(tokenIssuer))

	// Reading the session purges an expired one, even when the token itself
	// is already rejected.
	sess, err := s.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			s.expire()
		}
		if parseErr != nil {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if parseErr != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID != sess.Token {
		return nil, ErrInvalidToken
	}

	return &Principal{
		User:      sess.User,
		Session:   sess.Token,
		ExpiresAt: sess.ExpiresAt(s.sessions.Window()),
	}, nil
}

// ListUsers returns every admin account without secrets.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	if _, err := s.accounts.EnsureBootstrapAdmin(ctx); err != nil {
		return nil, fmt.Errorf("ensure bootstrap admin: %w", err)
	}
	users, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out, nil
}

// AddUser creates an admin account.
func (s *AuthService) AddUser(ctx context.Context, in accounts.NewAdmin) (*model.PublicUser, error) {
	user, err := s.accounts.Add(ctx, in)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// RemoveUser deletes an admin account.
func (s *AuthService) RemoveUser(ctx context.Context, email string) error {
	return s.accounts.Remove(ctx, email)
}

func (s *AuthService) setState(state State, user *model.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}

// expire moves an authenticated service to anonymous after its session was
// found expired.
func (s *AuthService) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnonymous {
		s.state = StateAnonymous
		s.user = nil
	}
}

func (s *AuthService) issueToken(sess *model.AdminSession, expires time.Time) (string, error) {
	claims := tokenClaims{
		Role: sess.User.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.Token,
			Subject:   sess.User.Email,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type tokenClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}
