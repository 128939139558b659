package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/handler"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/server/middleware"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host               string
	Port               int
	ShutdownTimeout    time.Duration
	CORSOrigins        []string
	MaxBodySize        int64 // bytes
	LoginRatePerMinute int
	// PublicRatePerMinute limits the unauthenticated form and chat
	// endpoints per client.
	PublicRatePerMinute int
	// TrustedProxies may set X-Real-IP and X-Forwarded-For. With none
	// configured the socket address identifies the client.
	TrustedProxies []netip.Prefix
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                8080,
		ShutdownTimeout:     30 * time.Second,
		CORSOrigins:         []string{"*"},
		MaxBodySize:         1 << 20, // 1MB
		LoginRatePerMinute:  20,
		PublicRatePerMinute: 60,
	}
}

// Deps are the components the routes are served from.
type Deps struct {
	Store     *config.Store
	Auth      *service.AuthService
	Options   *options.Store
	Forwarder *webhook.RequestForwarder
	Chat      *webhook.ChatProxy
	// ChatErrorText is shown to chat users when the chat webhook fails.
	ChatErrorText string
	Version       string
}

// Server is the top-level HTTP server for briefdesk. It owns the Chi router
// and the storage the routes read from.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	if len(s.cfg.TrustedProxies) > 0 {
		r.Use(middleware.TrustedRealIP(s.cfg.TrustedProxies))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Chat-Session", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(s.cfg.MaxBodySize))
	}
	r.Use(chimw.Compress(5))

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", handler.NewOpenAPIHandler(s.deps.Version).ServeSpec)

	adminHandler := handler.NewAdminHandler(s.deps.Auth, s.logger)
	optionsHandler := handler.NewOptionsHandler(s.deps.Options)
	intakeHandler := handler.NewIntakeHandler(s.deps.Forwarder, s.deps.Chat, s.deps.ChatErrorText, s.logger)

	// --- API routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Admin session. Login is limited per IP on top of the
		// failed-attempt counter.
		r.Route("/admin/session", func(r chi.Router) {
			r.With(middleware.RateLimit(s.cfg.LoginRatePerMinute)).Post("/", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(s.deps.Auth))
				r.Get("/", adminHandler.CurrentAdmin)
				r.Delete("/", adminHandler.Logout)
			})
		})

		// Admin accounts
		r.Route("/admin/users", func(r chi.Router) {
			r.Use(middleware.Authenticate(s.deps.Auth))
			r.Get("/", adminHandler.ListAdmins)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin())
				r.Post("/", adminHandler.CreateAdmin)
				r.Delete("/{email}", adminHandler.DeleteAdmin)
			})
		})

		// Option lists: public reads, admin writes
		r.Route("/options", func(r chi.Router) {
			r.Get("/", optionsHandler.ListOptions)
			r.Get("/{list}", optionsHandler.GetOptionList)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(s.deps.Auth))
				r.Put("/{list}", optionsHandler.ReplaceOptionList)
				r.Delete("/{list}", optionsHandler.ResetOptionList)
			})
		})

		// Public intake form and chat widget
		r.With(middleware.RateLimit(s.cfg.PublicRatePerMinute)).Post("/requests", intakeHandler.SubmitRequest)
		r.Route("/chat", func(r chi.Router) {
			r.With(middleware.RateLimit(s.cfg.PublicRatePerMinute)).Post("/sessions", intakeHandler.StartChat)
			r.With(middleware.RateLimitByHeader("X-Chat-Session", s.cfg.PublicRatePerMinute)).Post("/messages", intakeHandler.SendChat)
		})
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when storage is reachable,
// or 503 otherwise. Webhook configuration is reported but does not affect
// readiness.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if err := s.deps.Store.Ping(r.Context()); err != nil {
		checks["storage"] = "error: " + err.Error()
		status = "degraded"
	} else {
		checks["storage"] = "ok"
	}

	checks["request_webhook"] = configured(s.deps.Forwarder != nil && s.deps.Forwarder.Configured())
	checks["chat_webhook"] = configured(s.deps.Chat != nil && s.deps.Chat.Configured())

	if status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing storage.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.deps.Store.Close(); err != nil {
		s.logger.Warn("close storage", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
