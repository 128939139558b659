package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/model"
)

// recorder captures the last JSON body posted to a test webhook.
type recorder struct {
	body   map[string]interface{}
	header http.Header
}

func newWebhook(t *testing.T, status int, reply string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		rec.header = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		rec.body = map[string]interface{}{}
		json.Unmarshal(b, &rec.body)
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func validRequest() model.CreativeRequest {
	return model.CreativeRequest{
		Email:                    "ana.silva@example.com",
		TaskName:                 "Summer launch",
		Client:                   "ACME",
		CreativeType:             "Carrossel",
		Briefing:                 "Three slides about the summer line",
		CompetitiveDifferentials: []string{"Qualidade", "Preço competitivo"},
		Triggers:                 []string{"Escassez", "Urgência"},
		Intention:                "Aumento de vendas",
		ToneOfVoice:              "Neutro: Equilibrado, claro, acessível.",
		AwarenessLevel:           "Não consciente.",
		CTA:                      "Compre agora",
		StartDate:                "2025-02-01",
	}
}

func TestSubmit(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, `{"ok":true}`)
	f := NewRequestForwarder(NewClient(time.Second, "inst-1"), srv.URL)
	fixed := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	if err := f.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	tests := map[string]string{
		"userName":                 "ana.silva",
		"competitiveDifferentials": "Qualidade, Preço competitivo",
		"triggers":                 "Escassez, Urgência",
		"timestamp":                "2025-01-15T12:00:00Z",
		"taskName":                 "Summer launch",
	}
	for key, want := range tests {
		if got := rec.body[key]; got != want {
			t.Errorf("%s = %v, want %q", key, got, want)
		}
	}
	if got := rec.header.Get("X-Briefdesk-Instance"); got != "inst-1" {
		t.Errorf("instance header = %q", got)
	}
}

func TestSubmitMissingFields(t *testing.T) {
	f := NewRequestForwarder(NewClient(time.Second, ""), "http://unused.invalid")
	req := validRequest()
	req.Client = ""
	req.CTA = ""

	err := f.Submit(context.Background(), req)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if !strings.Contains(err.Error(), "client, cta") {
		t.Errorf("error should name missing fields: %v", err)
	}
}

func TestSubmitUpstreamFailure(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusBadGateway, "")
	f := NewRequestForwarder(NewClient(time.Second, ""), srv.URL)

	err := f.Submit(context.Background(), validRequest())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Errorf("status = %d", se.Status)
	}
}

func TestSubmitNotConfigured(t *testing.T) {
	f := NewRequestForwarder(NewClient(time.Second, ""), "")
	if f.Configured() {
		t.Error("Configured() = true for empty url")
	}
	if err := f.Submit(context.Background(), validRequest()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestChatSend(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantText   string
		wantSource model.ReplySource
	}{
		{"message field", `{"message":"Hi there"}`, "Hi there", model.ReplyFromMessage},
		{"reply field", `{"reply":"From reply"}`, "From reply", model.ReplyFromReply},
		{"response field", `{"response":"From response"}`, "From response", model.ReplyFromResponse},
		{"text field", `{"text":"From text"}`, "From text", model.ReplyFromText},
		{"priority", `{"text":"t","message":"m","reply":"r"}`, "m", model.ReplyFromMessage},
		{"empty message skipped", `{"message":"","reply":"r"}`, "r", model.ReplyFromReply},
		{"json string", `"plain json string"`, "plain json string", model.ReplyFromString},
		{"raw text", `Accepted`, "Accepted", model.ReplyFromRaw},
		{"object without text", `{"status":"ok"}`, "fallback text", model.ReplyFallback},
		{"empty body", ``, "fallback text", model.ReplyFallback},
		{"json number", `42`, "fallback text", model.ReplyFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newWebhook(t, http.StatusOK, tt.reply)
			p := NewChatProxy(NewClient(time.Second, ""), srv.URL, "fallback text")

			got, err := p.Send(context.Background(), model.ChatMessage{
				SessionID: "session_1",
				Message:   "  hello  ",
				UserAgent: "test-agent",
				URL:       "https://form.example.com/",
			})
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if got.Content != tt.wantText || got.Source != tt.wantSource {
				t.Errorf("reply = %q (%s), want %q (%s)", got.Content, got.Source, tt.wantText, tt.wantSource)
			}
			if rec.body["type"] != model.ChatEventMessage || rec.body["message"] != "hello" {
				t.Errorf("posted body = %v", rec.body)
			}
			if rec.body["sessionId"] != "session_1" || rec.body["userAgent"] != "test-agent" {
				t.Errorf("posted body = %v", rec.body)
			}
		})
	}
}

func TestChatSendValidation(t *testing.T) {
	p := NewChatProxy(NewClient(time.Second, ""), "http://unused.invalid", "")
	if _, err := p.Send(context.Background(), model.ChatMessage{Message: "hi"}); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing session: expected ErrMissingField, got %v", err)
	}
	if _, err := p.Send(context.Background(), model.ChatMessage{SessionID: "s", Message: "  "}); !errors.Is(err, ErrMissingField) {
		t.Errorf("blank message: expected ErrMissingField, got %v", err)
	}
}

func TestChatSendUpstreamError(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusInternalServerError, `{"message":"nope"}`)
	p := NewChatProxy(NewClient(time.Second, ""), srv.URL, "")
	if _, err := p.Send(context.Background(), model.ChatMessage{SessionID: "s", Message: "hi"}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestStartSession(t *testing.T) {
	srv, rec := newWebhook(t, http.StatusOK, "")
	p := NewChatProxy(NewClient(time.Second, ""), srv.URL, "")

	id, err := p.StartSession(context.Background(), ChatMeta{UserAgent: "ua"})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if !strings.HasPrefix(id, "session_") {
		t.Errorf("id = %q, want session_ prefix", id)
	}
	if rec.body["type"] != model.ChatEventInit || rec.body["sessionId"] != id {
		t.Errorf("posted body = %v", rec.body)
	}
}

func TestStartSessionFailureStillReturnsID(t *testing.T) {
	srv, _ := newWebhook(t, http.StatusServiceUnavailable, "")
	p := NewChatProxy(NewClient(time.Second, ""), srv.URL, "")

	id, err := p.StartSession(context.Background(), ChatMeta{})
	if err == nil {
		t.Fatal("expected error")
	}
	if id == "" {
		t.Error("expected a session id even on failure")
	}
}

func TestResolveInstanceID(t *testing.T) {
	kv, err := config.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer kv.Close()

	ctx := context.Background()
	first := ResolveInstanceID(ctx, kv)
	if first == "" {
		t.Fatal("expected an instance id")
	}
	if again := ResolveInstanceID(ctx, kv); again != first {
		t.Errorf("instance id changed: %q then %q", first, again)
	}
	if ResolveInstanceID(ctx, nil) == "" {
		t.Error("nil store should still produce an id")
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewRequestForwarder(NewClient(time.Second, ""), url)
	if err := f.Submit(context.Background(), validRequest()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}
