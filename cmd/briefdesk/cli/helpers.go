package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briefdesk/briefdesk/internal/accounts"
	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/service"
	"github.com/briefdesk/briefdesk/internal/session"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// BRIEFDESK_DATA_DIR env var, or ~/.briefdesk as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("BRIEFDESK_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".briefdesk")
}

// openStore opens the storage backend selected by cfg. SQLite without a DSN
// lives in the data directory.
func openStore(cfg config.StorageConfig) (*config.Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}
	if driver == config.DriverSQLite && cfg.DSN == "" {
		return config.NewStore(resolveDataDir())
	}
	return config.Open(driver, cfg.DSN)
}

// newLogger builds the process logger. dev forces debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig, dev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if dev {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseDuration parses a duration setting, using fallback when s is empty.
func parseDuration(key, s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, s)
	}
	return d, nil
}

// app is the set of wired components shared by serve, mcp and the
// management commands.
type app struct {
	cfg       *config.YAMLConfig
	logger    *slog.Logger
	store     *config.Store
	accounts  *accounts.Store
	auth      *service.AuthService
	options   *options.Store
	forwarder *webhook.RequestForwarder
	chat      *webhook.ChatProxy
}

// newApp opens storage and wires every component from cfg.
func newApp(ctx context.Context, cfg *config.YAMLConfig, logger *slog.Logger) (*app, error) {
	window, err := parseDuration("auth.session_window", cfg.Auth.SessionWindow, session.DefaultWindow)
	if err != nil {
		return nil, err
	}
	hookTimeout, err := parseDuration("webhooks.timeout", cfg.Webhooks.Timeout, 15*time.Second)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	secret, err := service.ResolveSigningSecret(ctx, store, cfg.Auth.JWTSecret)
	if err != nil {
		store.Close()
		return nil, err
	}

	acc := accounts.NewStore(store, accounts.Bootstrap{
		Email:    cfg.Bootstrap.Email,
		Password: cfg.Bootstrap.Password,
		Name:     cfg.Bootstrap.Name,
	}, logger, accounts.WithGeneratedPassword(printGeneratedPassword(os.Stderr)))
	sessions := session.NewManager(store, session.WithWindow(window), session.WithLogger(logger))

	authSvc := service.NewAuthService(acc, sessions, secret,
		service.WithLimiter(service.NewAttemptLimiter(cfg.Auth.MaxLoginAttempts)),
		service.WithLogger(logger),
	)

	client := webhook.NewClient(hookTimeout, webhook.ResolveInstanceID(ctx, store))

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		accounts:  acc,
		auth:      authSvc,
		options:   options.NewStore(store, logger),
		forwarder: webhook.NewRequestForwarder(client, cfg.Webhooks.RequestURL),
		chat:      webhook.NewChatProxy(client, cfg.Webhooks.ChatURL, cfg.Webhooks.ChatFallback),
	}, nil
}

// printGeneratedPassword shows a generated bootstrap password on the
// terminal once. It never goes through the logger, which may write to disk.
func printGeneratedPassword(w io.Writer) func(email, password string) {
	return func(email, password string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Bootstrap super-admin: %s\n", email)
		fmt.Fprintf(w, "  Generated password:    %s\n", password)
		fmt.Fprintln(w, "  This is shown once. Set bootstrap.password to choose your own.")
		fmt.Fprintln(w)
	}
}

// Close releases storage.
func (a *app) Close() error {
	return a.store.Close()
}

// openApp loads settings and wires the app with a logger on stderr. Used by
// the management commands.
func openApp(ctx context.Context) (*app, error) {
	cfg := loadSettings()
	return newApp(ctx, cfg, newLogger(os.Stderr, cfg.Logging, false))
}

// --- PID file management ---

func pidFilePath() string {
	return filepath.Join(resolveDataDir(), "briefdesk.pid")
}

func writePID(pid int) error {
	dir := resolveDataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0644)
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePID() {
	os.Remove(pidFilePath())
}

func logFilePath() string {
	return filepath.Join(resolveDataDir(), "briefdesk.log")
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
