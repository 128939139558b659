package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

// IntakeHandler serves the public request form and chat widget endpoints.
type IntakeHandler struct {
	forwarder *webhook.RequestForwarder
	chat      *webhook.ChatProxy
	errorText string
	logger    *slog.Logger
}

// NewIntakeHandler creates a new IntakeHandler. errorText is shown to chat
// users when the chat webhook fails.
func NewIntakeHandler(forwarder *webhook.RequestForwarder, chat *webhook.ChatProxy, errorText string, logger *slog.Logger) *IntakeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorText == "" {
		errorText = "Sorry, something went wrong. Please try again."
	}
	return &IntakeHandler{forwarder: forwarder, chat: chat, errorText: errorText, logger: logger}
}

// SubmitRequest validates a creative request and forwards it to the request
// webhook.
// POST /api/v1/requests
func (h *IntakeHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req model.CreativeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if missing := req.RequiredFields(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Please fill in all required fields", map[string]interface{}{
			"missing": missing,
		})
		return
	}

	if err := h.forwarder.Submit(r.Context(), req); err != nil {
		h.logger.Error("forward creative request failed", "task", req.TaskName, "client", req.Client, "error", err)
		writeDomainError(w, err, "Failed to forward request")
		return
	}

	h.logger.Info("creative request forwarded", "task", req.TaskName, "client", req.Client)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "Request submitted",
	})
}

type startChatRequest struct {
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
}

// StartChat opens a chat session.
// POST /api/v1/chat/sessions
func (h *IntakeHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	var req startChatRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	id, err := h.chat.StartSession(r.Context(), webhook.ChatMeta{UserAgent: req.UserAgent, URL: req.URL})
	if err != nil {
		// The widget works without the announcement.
		h.logger.Warn("chat session announcement failed", "session", id, "error", err)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

// SendChat relays a chat message and returns the bot reply.
// POST /api/v1/chat/messages
func (h *IntakeHandler) SendChat(w http.ResponseWriter, r *http.Request) {
	var msg model.ChatMessage
	if err := readJSON(w, r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg.UserAgent == "" {
		msg.UserAgent = r.UserAgent()
	}

	reply, err := h.chat.Send(r.Context(), msg)
	if err != nil {
		if errors.Is(err, webhook.ErrMissingField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("chat relay failed", "session", msg.SessionID, "error", err)
		status, _ := classifyError(err, h.errorText)
		writeError(w, status, h.errorText)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
