package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/briefdesk/briefdesk/internal/config"
)

var (
	cfgFile    string
	appVersion string // set in Execute, reported by serve and the OpenAPI document
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(commit, date)
	return rootCmd.Execute()
}

func newRootCmd(commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "briefdesk",
		Short: "Admin console backend for a creative request desk",
		Long: `briefdesk serves the admin console and public intake endpoints of a creative
request desk: admin accounts and sessions, the option lists shown on the request
form, and forwarding of form submissions and chat messages to webhooks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./briefdesk.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the SQLite store (default: ~/.briefdesk)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", "", "log format: text or json")
	viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newVersionCmd(commit, date))
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newOptionsCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("briefdesk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.briefdesk")
	}

	setDefaults(config.DefaultYAMLConfig())

	viper.SetEnvPrefix("BRIEFDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}

// setDefaults registers every configuration key with viper so environment
// variables resolve even when no config file mentions the key.
func setDefaults(d *config.YAMLConfig) {
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	viper.SetDefault("server.cors.origins", d.Server.CORS.Origins)
	viper.SetDefault("server.trusted_proxies", d.Server.TrustedProxies)
	viper.SetDefault("storage.driver", d.Storage.Driver)
	viper.SetDefault("storage.dsn", d.Storage.DSN)
	viper.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	viper.SetDefault("auth.session_window", d.Auth.SessionWindow)
	viper.SetDefault("auth.max_login_attempts", d.Auth.MaxLoginAttempts)
	viper.SetDefault("auth.login_rate_per_minute", d.Auth.LoginRatePerMinute)
	viper.SetDefault("bootstrap.email", d.Bootstrap.Email)
	viper.SetDefault("bootstrap.password", d.Bootstrap.Password)
	viper.SetDefault("bootstrap.name", d.Bootstrap.Name)
	viper.SetDefault("webhooks.request_url", d.Webhooks.RequestURL)
	viper.SetDefault("webhooks.chat_url", d.Webhooks.ChatURL)
	viper.SetDefault("webhooks.timeout", d.Webhooks.Timeout)
	viper.SetDefault("webhooks.chat_fallback_reply", d.Webhooks.ChatFallback)
	viper.SetDefault("webhooks.chat_error_reply", d.Webhooks.ChatErrorText)
	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
}

// loadSettings reads the effective configuration out of viper.
func loadSettings() *config.YAMLConfig {
	return &config.YAMLConfig{
		Server: config.ServerConfig{
			Host:            viper.GetString("server.host"),
			Port:            viper.GetInt("server.port"),
			ShutdownTimeout: viper.GetString("server.shutdown_timeout"),
			CORS: config.CORSConfig{
				Origins: viper.GetStringSlice("server.cors.origins"),
			},
			TrustedProxies: viper.GetStringSlice("server.trusted_proxies"),
		},
		Storage: config.StorageConfig{
			Driver: viper.GetString("storage.driver"),
			DSN:    viper.GetString("storage.dsn"),
		},
		Auth: config.AuthConfig{
			JWTSecret:          viper.GetString("auth.jwt_secret"),
			SessionWindow:      viper.GetString("auth.session_window"),
			MaxLoginAttempts:   viper.GetInt("auth.max_login_attempts"),
			LoginRatePerMinute: viper.GetInt("auth.login_rate_per_minute"),
		},
		Bootstrap: config.BootstrapConfig{
			Email:    viper.GetString("bootstrap.email"),
			Password: viper.GetString("bootstrap.password"),
			Name:     viper.GetString("bootstrap.name"),
		},
		Webhooks: config.WebhooksConfig{
			RequestURL:    viper.GetString("webhooks.request_url"),
			ChatURL:       viper.GetString("webhooks.chat_url"),
			Timeout:       viper.GetString("webhooks.timeout"),
			ChatFallback:  viper.GetString("webhooks.chat_fallback_reply"),
			ChatErrorText: viper.GetString("webhooks.chat_error_reply"),
		},
		Logging: config.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}
}
