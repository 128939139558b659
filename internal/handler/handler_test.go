package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/server/middleware"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/session"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

const (
	testJWTSecret  = "test-jwt-secret-for-handler-tests"
	ownerEmail     = "owner@example.com"
	ownerPassword  = "OwnerPass1!"
	adminEmail     = "ana@example.com"
	adminPassword  = "AnaPass9"
	chatErrorReply = "chat is down"
)

// testEnv bundles a router with its real dependencies on an in-memory store.
type testEnv struct {
	store   *config.Store
	authSvc *service.AuthService
	router  chi.Router

	// hook is the fake webhook behind both the request forwarder and the
	// chat proxy. Tests swap its handler per case.
	hook     *httptest.Server
	hookMu   sync.Mutex
	hookFunc http.HandlerFunc
	hookBody map[string]interface{}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := config.NewStore("") // in-memory SQLite
	if err != nil {
		t.Fatalf("config.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	acc := accounts.NewStore(store, accounts.Bootstrap{Email: ownerEmail, Password: ownerPassword, Name: "Owner"}, logger)
	sessions := session.NewManager(store, session.WithLogger(logger))
	authSvc := service.NewAuthService(acc, sessions, testJWTSecret, service.WithLogger(logger))

	env := &testEnv{store: store, authSvc: authSvc}
	env.hookFunc = func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"hello from bot"}`)
	}
	env.hook = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body := map[string]interface{}{}
		json.Unmarshal(b, &body)

		env.hookMu.Lock()
		env.hookBody = body
		fn := env.hookFunc
		env.hookMu.Unlock()
		fn(w, r)
	}))
	t.Cleanup(env.hook.Close)

	client := webhook.NewClient(time.Second, "test-instance")
	adminHandler := NewAdminHandler(authSvc, logger)
	optionsHandler := NewOptionsHandler(options.NewStore(store, logger))
	intakeHandler := NewIntakeHandler(
		webhook.NewRequestForwarder(client, env.hook.URL),
		webhook.NewChatProxy(client, env.hook.URL, "fallback"),
		chatErrorReply, logger,
	)

	r := chi.NewRouter()
	r.Get("/openapi.json", NewOpenAPIHandler("test").ServeSpec)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/admin/session", adminHandler.Login)
		r.Get("/options", optionsHandler.ListOptions)
		r.Get("/options/{list}", optionsHandler.GetOptionList)
		r.Post("/requests", intakeHandler.SubmitRequest)
		r.Post("/chat/sessions", intakeHandler.StartChat)
		r.Post("/chat/messages", intakeHandler.SendChat)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authSvc))
			r.Get("/admin/session", adminHandler.CurrentAdmin)
			r.Delete("/admin/session", adminHandler.Logout)
			r.Get("/admin/users", adminHandler.ListAdmins)
			r.Put("/options/{list}", optionsHandler.ReplaceOptionList)
			r.Delete("/options/{list}", optionsHandler.ResetOptionList)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin())
				r.Post("/admin/users", adminHandler.CreateAdmin)
				r.Delete("/admin/users/{email}", adminHandler.DeleteAdmin)
			})
		})
	})
	env.router = r
	return env
}

// setHook replaces the fake webhook's handler.
func (e *testEnv) setHook(fn http.HandlerFunc) {
	e.hookMu.Lock()
	e.hookFunc = fn
	e.hookMu.Unlock()
}

// lastHook returns the decoded body of the last webhook call, or nil.
func (e *testEnv) lastHook() map[string]interface{} {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	return e.hookBody
}

// seedAdmin creates a regular admin account.
func (e *testEnv) seedAdmin(t *testing.T) {
	t.Helper()
	_, err := e.authSvc.AddUser(context.Background(), accounts.NewAdmin{
		Email:    adminEmail,
		Password: adminPassword,
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
}

// login logs in and returns the bearer token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := e.do(t, "POST", "/api/v1/admin/session", toJSON(t, map[string]string{
		"email":    email,
		"password": password,
	}))
	assertStatus(t, rr, http.StatusOK)
	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &resp)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAuth(t, method, path, "", body)
}

func (e *testEnv) doAuth(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return bytes.NewBuffer(b)
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body: %s", err, rr.Body.String())
	}
}
