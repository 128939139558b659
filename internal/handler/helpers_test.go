package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/session"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"admin not found", accounts.ErrNotFound, http.StatusNotFound},
		{"unknown list wrapped", fmt.Errorf("%w: colors", options.ErrUnknownList), http.StatusNotFound},
		{"no session", session.ErrNoSession, http.StatusNotFound},
		{"duplicate email", accounts.ErrDuplicateEmail, http.StatusConflict},
		{"duplicate item", options.ErrDuplicateItem, http.StatusConflict},
		{"protected", accounts.ErrProtectedAccount, http.StatusForbidden},
		{"invalid input", accounts.ErrInvalidInput, http.StatusBadRequest},
		{"missing field", webhook.ErrMissingField, http.StatusBadRequest},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"lockout", service.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"not configured", webhook.ErrNotConfigured, http.StatusServiceUnavailable},
		{"upstream status", &webhook.StatusError{URL: "x", Status: 500}, http.StatusBadGateway},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := classifyError(tt.err, "fallback")
			if got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
			if tt.want == http.StatusInternalServerError && msg != "fallback" {
				t.Errorf("internal errors must not leak: %q", msg)
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"203.0.113.7:5555", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if got := clientKey(r); got != tt.want {
			t.Errorf("clientKey(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusConflict, "duplicate", map[string]interface{}{"list": "clients"})

	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	want := `{"error":{"code":409,"message":"duplicate","context":{"list":"clients"}}}` + "\n"
	if rr.Body.String() != want {
		t.Errorf("body = %s, want %s", rr.Body.String(), want)
	}
}
