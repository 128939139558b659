package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/session"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope. The optional ctx map provides additional context fields.
func writeError(w http.ResponseWriter, code int, message string, ctx ...map[string]interface{}) {
	var ctxMap map[string]interface{}
	if len(ctx) > 0 {
		ctxMap = ctx[0]
	}
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
			Context: ctxMap,
		},
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeList writes items in the {"resource": [...], "meta": {"count": n}}
// envelope.
func writeList[T any](w http.ResponseWriter, items []T) {
	writeJSON(w, http.StatusOK, model.ListResponse{
		Resource: items,
		Meta:     &model.ResponseMeta{Count: len(items)},
	})
}

func writeSuccess(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]interface{}{"success": true})
}

// clientKey identifies the caller for login attempt limiting. RemoteAddr is
// the socket peer unless the request came through a trusted proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// classifyError maps domain errors to an HTTP status and a client-safe
// message. Unknown errors become 500 with the fallback message.
func classifyError(err error, fallbackMsg string) (int, string) {
	var statusErr *webhook.StatusError

	switch {
	case errors.Is(err, accounts.ErrNotFound),
		errors.Is(err, config.ErrNotFound),
		errors.Is(err, options.ErrUnknownList),
		errors.Is(err, options.ErrItemNotFound),
		errors.Is(err, session.ErrNoSession):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, accounts.ErrDuplicateEmail),
		errors.Is(err, options.ErrDuplicateItem):
		return http.StatusConflict, err.Error()

	case errors.Is(err, accounts.ErrProtectedAccount):
		return http.StatusForbidden, err.Error()

	case errors.Is(err, accounts.ErrInvalidInput),
		errors.Is(err, options.ErrInvalidItem),
		errors.Is(err, webhook.ErrMissingField):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"

	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts"

	case errors.Is(err, webhook.ErrNotConfigured):
		return http.StatusServiceUnavailable, fallbackMsg + ": webhook not configured"

	case errors.As(err, &statusErr), errors.Is(err, webhook.ErrUnreachable):
		return http.StatusBadGateway, fallbackMsg

	default:
		return http.StatusInternalServerError, fallbackMsg
	}
}

// writeDomainError classifies err and writes it with the error envelope.
func writeDomainError(w http.ResponseWriter, err error, fallbackMsg string) {
	status, msg := classifyError(err, fallbackMsg)
	writeError(w, status, msg)
}
