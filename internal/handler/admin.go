package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
	"github.com/briefdesk/briefdesk/internal/server/middleware"
	"github.com/briefdesk/briefdesk/internal/service"
)

// AdminHandler serves the admin session and admin account endpoints.
type AdminHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authSvc *service.AuthService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{authSvc: authSvc, logger: logger}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response payload for a successful login.
type loginResponse struct {
	User      model.PublicUser `json:"user"`
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	ExpiresAt time.Time        `json:"expires_at"`
	ExpiresIn int              `json:"expires_in"`
}

// Login authenticates an admin and returns a bearer token for the session.
// POST /api/v1/admin/session
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	client := clientKey(r)
	res, err := h.authSvc.Login(r.Context(), client, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", map[string]interface{}{
				"remaining_attempts": h.authSvc.Limiter().Remaining(client),
			})
			return
		}
		if !errors.Is(err, service.ErrTooManyAttempts) {
			h.logger.Error("login failed", "error", err)
		}
		writeDomainError(w, err, "Authentication error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User:      res.User,
		Token:     res.Token,
		TokenType: "bearer",
		ExpiresAt: res.ExpiresAt,
		ExpiresIn: int(time.Until(res.ExpiresAt).Seconds()),
	})
}

// Logout ends the current session. The token stops working immediately.
// DELETE /api/v1/admin/session
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context()); err != nil {
		writeDomainError(w, err, "Failed to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Session ended",
	})
}

// CurrentAdmin returns the admin behind the bearer token.
// GET /api/v1/admin/session
func (h *AdminHandler) CurrentAdmin(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":       p.User,
		"expires_at": p.ExpiresAt,
	})
}

// ---------------------------------------------------------------------------
// Admin accounts
// ---------------------------------------------------------------------------

// ListAdmins returns every admin account.
// GET /api/v1/admin/users
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	users, err := h.authSvc.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err, "Failed to list admins")
		return
	}
	writeList(w, users)
}

// createAdminRequest is the payload for CreateAdmin.
type createAdminRequest struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// CreateAdmin creates an admin account.
// POST /api/v1/admin/users
func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.authSvc.AddUser(r.Context(), accounts.NewAdmin{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to create admin")
		return
	}

	if p := middleware.GetPrincipal(r.Context()); p != nil {
		h.logger.Info("admin created", "email", user.Email, "role", user.Role, "by", p.User.Email)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":              user,
		"password_strength": secure.PasswordStrength(req.Password),
	})
}

// DeleteAdmin removes an admin account.
// DELETE /api/v1/admin/users/{email}
func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}

	if err := h.authSvc.RemoveUser(r.Context(), email); err != nil {
		writeDomainError(w, err, "Failed to remove admin")
		return
	}
	writeSuccess(w, http.StatusOK)
}
