package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/session"
)

type contextKeyAuth string

const (
	// AuthPrincipalKey is the context key for the authenticated principal.
	AuthPrincipalKey contextKeyAuth = "auth_principal"
)

// TokenValidator resolves a bearer token to the admin behind it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, bearer string) (*service.Principal, error)
}

// Authenticate returns an HTTP middleware that requires a valid admin bearer
// token in the Authorization header. The token must belong to the current
// session. On success the principal is attached to the request context.
func Authenticate(auth TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required. Provide a Bearer token.")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			p, err := auth.ValidateToken(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrNoSession):
				writeAuthError(w, http.StatusUnauthorized, "Session expired or not found")
				return
			case errors.Is(err, service.ErrInvalidToken):
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			default:
				writeAuthError(w, http.StatusInternalServerError, "Authentication error")
				return
			}

			noteAdmin(r.Context(), p.User.Email)
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperAdmin returns an HTTP middleware that only lets super-admins
// through. It must be used after Authenticate in the middleware chain.
func RequireSuperAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())
			if principal == nil {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !principal.User.IsSuperAdmin() {
				writeAuthError(w, http.StatusForbidden, "Super-admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *service.Principal) context.Context {
	return context.WithValue(ctx, AuthPrincipalKey, p)
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{
		Error: model.ErrorDetail{Code: status, Message: message},
	})
}
