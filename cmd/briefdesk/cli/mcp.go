package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bmcp "github.com/briefdesk/briefdesk/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI assistants",
		Long: `Start a Model Context Protocol (MCP) server that exposes the request form
option lists as resources and tools, and lets assistants submit creative
requests. Supports stdio (default) and HTTP transports.

In stdio mode, the MCP server communicates over stdin/stdout using JSON-RPC,
suitable for MCP clients that launch the server as a subprocess.

In HTTP mode, the server listens on the specified port using Streamable HTTP.`,
		Example: `  briefdesk mcp                              # stdio mode
  briefdesk mcp --transport http --port 3001  # HTTP mode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int) error {
	cfg := loadSettings()
	// stdout carries the protocol in stdio mode, so logs go to stderr.
	logger := newLogger(os.Stderr, cfg.Logging, false)

	a, err := newApp(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	mcpSrv := bmcp.NewMCPServer(a.options, a.forwarder, versionString(), logger)

	switch transport {
	case "stdio":
		return mcpSrv.ServeStdio()
	case "http":
		addr := fmt.Sprintf(":%d", port)
		return mcpSrv.ServeHTTP(addr)
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
