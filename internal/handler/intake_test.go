package handler

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/briefdesk/briefdesk/internal/model"
)

func validCreativeRequest() map[string]interface{} {
	return map[string]interface{}{
		"email":                    "ana.silva@example.com",
		"taskName":                 "Summer launch",
		"client":                   "ACME",
		"creativeType":             "Carrossel",
		"briefing":                 "Three slides",
		"competitiveDifferentials": []string{"Qualidade", "Credibilidade"},
		"triggers":                 []string{"Escassez"},
		"intention":                "Aumento de vendas",
		"toneOfVoice":              "Neutro",
		"awarenessLevel":           "Não consciente.",
		"cta":                      "Compre agora",
		"startDate":                "2025-02-01",
	}
}

func TestSubmitRequest(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/v1/requests", toJSON(t, validCreativeRequest()))
	assertStatus(t, rr, http.StatusAccepted)

	if env.lastHook()["userName"] != "ana.silva" {
		t.Errorf("userName = %v", env.lastHook()["userName"])
	}
	if env.lastHook()["competitiveDifferentials"] != "Qualidade, Credibilidade" {
		t.Errorf("competitiveDifferentials = %v", env.lastHook()["competitiveDifferentials"])
	}
}

func TestSubmitRequest_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	req := validCreativeRequest()
	delete(req, "client")

	rr := env.do(t, "POST", "/api/v1/requests", toJSON(t, req))
	assertStatus(t, rr, http.StatusBadRequest)

	var resp model.ErrorResponse
	decodeJSON(t, rr, &resp)
	missing, _ := resp.Error.Context["missing"].([]interface{})
	if len(missing) != 1 || missing[0] != "client" {
		t.Errorf("missing = %v", resp.Error.Context["missing"])
	}
	if env.lastHook() != nil {
		t.Error("webhook should not be called for invalid requests")
	}
}

func TestSubmitRequest_WebhookFailure(t *testing.T) {
	env := newTestEnv(t)
	env.setHook(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rr := env.do(t, "POST", "/api/v1/requests", toJSON(t, validCreativeRequest()))
	assertStatus(t, rr, http.StatusBadGateway)
}

func TestStartChat(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/v1/chat/sessions", toJSON(t, map[string]string{"url": "https://form.example.com"}))
	assertStatus(t, rr, http.StatusCreated)

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	decodeJSON(t, rr, &resp)
	if !strings.HasPrefix(resp.SessionID, "session_") {
		t.Errorf("sessionId = %q", resp.SessionID)
	}
	if env.lastHook()["type"] != model.ChatEventInit {
		t.Errorf("webhook type = %v, want init", env.lastHook()["type"])
	}
}

func TestStartChat_WebhookDownStillOpens(t *testing.T) {
	env := newTestEnv(t)
	env.setHook(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rr := env.do(t, "POST", "/api/v1/chat/sessions", nil)
	assertStatus(t, rr, http.StatusCreated)
}

func TestSendChat(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/v1/chat/messages", toJSON(t, map[string]string{
		"sessionId": "session_abc",
		"message":   "Hi",
	}))
	assertStatus(t, rr, http.StatusOK)

	var reply model.ChatReply
	decodeJSON(t, rr, &reply)
	if reply.Content != "hello from bot" || reply.Source != model.ReplyFromMessage {
		t.Errorf("reply = %+v", reply)
	}
}

func TestSendChat_Errors(t *testing.T) {
	t.Run("missing message", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, "POST", "/api/v1/chat/messages", toJSON(t, map[string]string{"sessionId": "s"}))
		assertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("webhook failure shows error reply", func(t *testing.T) {
		env := newTestEnv(t)
		env.setHook(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "boom")
		})
		rr := env.do(t, "POST", "/api/v1/chat/messages", toJSON(t, map[string]string{
			"sessionId": "s",
			"message":   "Hi",
		}))
		assertStatus(t, rr, http.StatusBadGateway)

		var resp model.ErrorResponse
		decodeJSON(t, rr, &resp)
		if resp.Error.Message != chatErrorReply {
			t.Errorf("message = %q, want %q", resp.Error.Message, chatErrorReply)
		}
	})
}

func TestServeOpenAPISpec(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/openapi.json", nil)
	assertStatus(t, rr, http.StatusOK)

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	decodeJSON(t, rr, &doc)
	if doc.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %q", doc.OpenAPI)
	}
	if _, ok := doc.Paths["/api/v1/options/{list}"]; !ok {
		t.Error("expected options path in document")
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://example.com" {
		t.Errorf("servers = %+v", doc.Servers)
	}
}
