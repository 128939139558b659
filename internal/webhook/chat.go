package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/briefdesk/briefdesk/internal/model"
)

// DefaultFallbackReply is used when the chat webhook answers without text.
const DefaultFallbackReply = "Got your message! How else can I help?"

// ChatMeta describes the page the chat widget runs on.
type ChatMeta struct {
	UserAgent string `json:"userAgent,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ChatProxy relays chat widget messages to the chat webhook.
type ChatProxy struct {
	client   *Client
	url      string
	fallback string
	now      func() time.Time
}

// NewChatProxy creates a chat proxy posting to url. An empty fallback uses
// DefaultFallbackReply.
func NewChatProxy(client *Client, url, fallback string) *ChatProxy {
	if fallback == "" {
		fallback = DefaultFallbackReply
	}
	return &ChatProxy{client: client, url: url, fallback: fallback, now: time.Now}
}

// Configured reports whether a chat webhook URL is set.
func (p *ChatProxy) Configured() bool {
	return p.url != ""
}

type chatPayload struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
}

// StartSession mints a chat session id and announces it to the webhook. The
// id is returned even when the announcement fails.
func (p *ChatProxy) StartSession(ctx context.Context, meta ChatMeta) (string, error) {
	id := "session_" + uuid.New().String()
	_, err := p.client.post(ctx, p.url, chatPayload{
		SessionID: id,
		Type:      model.ChatEventInit,
		Message:   "Session started",
		Timestamp: p.now().UTC().Format(time.RFC3339),
		UserAgent: meta.UserAgent,
		URL:       meta.URL,
	})
	if err != nil {
		return id, fmt.Errorf("announce chat session: %w", err)
	}
	return id, nil
}

// Send relays msg and decodes the bot reply.
func (p *ChatProxy) Send(ctx context.Context, msg model.ChatMessage) (*model.ChatReply, error) {
	text := strings.TrimSpace(msg.Message)
	switch {
	case msg.SessionID == "":
		return nil, fmt.Errorf("%w: sessionId", ErrMissingField)
	case text == "":
		return nil, fmt.Errorf("%w: message", ErrMissingField)
	}

	typ := msg.Type
	if typ == "" {
		typ = model.ChatEventMessage
	}

	body, err := p.client.post(ctx, p.url, chatPayload{
		SessionID: msg.SessionID,
		Type:      typ,
		Message:   text,
		Timestamp: p.now().UTC().Format(time.RFC3339),
		UserAgent: msg.UserAgent,
		URL:       msg.URL,
	})
	if err != nil {
		return nil, err
	}

	content, source := p.decodeReply(body)
	return &model.ChatReply{SessionID: msg.SessionID, Content: content, Source: source}, nil
}

// decodeReply picks the reply text out of a webhook response. JSON objects
// are searched for message, reply, response and text in that order; a JSON
// string or a non-JSON body is used as is.
func (p *ChatProxy) decodeReply(body []byte) (string, model.ReplySource) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return p.fallback, model.ReplyFallback
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		fields := []struct {
			key    string
			source model.ReplySource
		}{
			{"message", model.ReplyFromMessage},
			{"reply", model.ReplyFromReply},
			{"response", model.ReplyFromResponse},
			{"text", model.ReplyFromText},
		}
		for _, f := range fields {
			if s, ok := obj[f.key].(string); ok && s != "" {
				return s, f.source
			}
		}
		return p.fallback, model.ReplyFallback
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if s == "" {
			return p.fallback, model.ReplyFallback
		}
		return s, model.ReplyFromString
	}

	if json.Valid(trimmed) {
		// Numbers, arrays and other JSON values carry no reply text.
		return p.fallback, model.ReplyFallback
	}
	return string(trimmed), model.ReplyFromRaw
}
