package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the top-level briefdesk configuration file.
type YAMLConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Webhooks  WebhooksConfig  `yaml:"webhooks"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string     `yaml:"host"`
	Port            int        `yaml:"port"`
	ShutdownTimeout string     `yaml:"shutdown_timeout"`
	CORS            CORSConfig `yaml:"cors"`
	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// whose forwarding headers are honored.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// CORSConfig controls cross-origin resource sharing settings.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// StorageConfig selects the key-value storage backend. An empty DSN with the
// sqlite driver stores briefdesk.db in the data directory.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// AuthConfig controls admin authentication.
type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	SessionWindow      string `yaml:"session_window"`
	MaxLoginAttempts   int    `yaml:"max_login_attempts"`
	LoginRatePerMinute int    `yaml:"login_rate_per_minute"`
}

// BootstrapConfig is the seed identity of the undeletable super-admin.
type BootstrapConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// WebhooksConfig holds the external endpoints the intake form and chat
// widget are forwarded to.
type WebhooksConfig struct {
	RequestURL    string `yaml:"request_url"`
	ChatURL       string `yaml:"chat_url"`
	Timeout       string `yaml:"timeout"`
	ChatFallback  string `yaml:"chat_fallback_reply"`
	ChatErrorText string `yaml:"chat_error_reply"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadYAMLConfig reads and parses a YAML configuration file. Environment
// variables referenced as ${VAR_NAME} in the file are expanded before parsing.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	cfg := DefaultYAMLConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// DefaultYAMLConfig returns a YAMLConfig pre-filled with sensible defaults.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: "30s",
			CORS: CORSConfig{
				Origins: []string{"*"},
			},
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
		},
		Auth: AuthConfig{
			SessionWindow:      "120m",
			MaxLoginAttempts:   5,
			LoginRatePerMinute: 20,
		},
		Bootstrap: BootstrapConfig{
			Email: "admin@briefdesk.local",
			Name:  "Briefdesk Admin",
		},
		Webhooks: WebhooksConfig{
			Timeout:       "15s",
			ChatFallback:  "Got your message! How else can I help?",
			ChatErrorText: "Sorry, something went wrong. Please try again.",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// WriteDefaultConfig writes the default configuration to a YAML file.
func WriteDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultYAMLConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
