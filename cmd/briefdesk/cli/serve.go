package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/briefdesk/briefdesk/internal/server"
	"github.com/briefdesk/briefdesk/internal/server/middleware"
	"github.com/briefdesk/briefdesk/internal/service"
)

const banner = `
 _          _       __     _           _
| |__  _ __(_) ___ / _| __| | ___  ___| | __
| '_ \| '__| |/ _ \ |_ / _' |/ _ \/ __| |/ /
| |_) | |  | |  __/  _| (_| |  __/\__ \   <
|_.__/|_|  |_|\___|_|  \__,_|\___||___/_|\_\
`

func newServeCmd() *cobra.Command {
	var (
		port       int
		host       string
		dev        bool
		background bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the briefdesk API server",
		Long:  "Start the HTTP server for the admin console, the option lists and the public intake endpoints.",
		Example: `  briefdesk serve                  # foreground
  briefdesk serve --background     # detach, log to the data directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if background {
				return runServeBackground()
			}
			return runServe(dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging, CORS *)")
	cmd.Flags().BoolVar(&background, "background", false, "Run the server as a detached background process")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	cfg := loadSettings()
	logger := newLogger(os.Stderr, cfg.Logging, dev)
	ctx := context.Background()

	shutdown, err := parseDuration("server.shutdown_timeout", cfg.Server.ShutdownTimeout, 30*time.Second)
	if err != nil {
		return err
	}
	trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	// 1. Storage and components
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("storage initialized", "driver", a.store.Driver())

	// 2. Bootstrap super-admin and any session left from a previous run
	if created, err := a.accounts.EnsureBootstrapAdmin(ctx); err != nil {
		a.Close()
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	} else if created {
		logger.Info("bootstrap admin created", "email", a.accounts.BootstrapEmail())
	}
	if err := a.auth.RestoreSession(ctx); err != nil {
		logger.Warn("failed to restore admin session", "error", err)
	}
	if state, user := a.auth.Current(); state == service.StateAuthenticated {
		logger.Info("admin session restored", "email", user.Email)
	}

	if !a.forwarder.Configured() {
		logger.Warn("webhooks.request_url is not set; request submissions will fail")
	}
	if !a.chat.Configured() {
		logger.Warn("webhooks.chat_url is not set; chat messages will fail")
	}

	// 3. Build and start HTTP server
	corsOrigins := cfg.Server.CORS.Origins
	if dev || len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	srvCfg.ShutdownTimeout = shutdown
	srvCfg.CORSOrigins = corsOrigins
	srvCfg.TrustedProxies = trusted
	if cfg.Auth.LoginRatePerMinute > 0 {
		srvCfg.LoginRatePerMinute = cfg.Auth.LoginRatePerMinute
	}

	srv := server.New(srvCfg, server.Deps{
		Store:         a.store,
		Auth:          a.auth,
		Options:       a.options,
		Forwarder:     a.forwarder,
		Chat:          a.chat,
		ChatErrorText: cfg.Webhooks.ChatErrorText,
		Version:       versionString(),
	}, logger)

	if err := writePID(os.Getpid()); err != nil {
		logger.Warn("failed to write PID file", "error", err)
	}
	defer removePID()

	fmt.Printf("→ briefdesk %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", srvCfg.Host, srvCfg.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", srvCfg.Host, srvCfg.Port)
	fmt.Println()

	// ListenAndServe closes storage after draining.
	return srv.ListenAndServe()
}

// runServeBackground re-executes the binary as a detached child process with
// output sent to the log file in the data directory.
func runServeBackground() error {
	if pid, err := readPID(); err == nil && isProcessRunning(pid) {
		return fmt.Errorf("server already running (PID %d)", pid)
	}

	// Create the bootstrap admin here so a generated password reaches this
	// terminal instead of the background log file.
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	_, err = a.accounts.EnsureBootstrapAdmin(ctx)
	a.Close()
	if err != nil {
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	if err := os.MkdirAll(resolveDataDir(), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"serve", "--data-dir", resolveDataDir()}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	args = append(args,
		"--host", viper.GetString("server.host"),
		"--port", fmt.Sprint(viper.GetInt("server.port")),
	)

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setSysProcAttr(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start background server: %w", err)
	}

	fmt.Printf("briefdesk server started in background (PID %d)\n", child.Process.Pid)
	fmt.Printf("  Logs: %s\n", logFilePath())
	fmt.Println("  Stop: briefdesk stop")
	return child.Process.Release()
}
