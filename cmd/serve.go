package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"confattach/config"
	"confattach/internal/tools"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var (
		transport string
		host      string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the attachment tools as an MCP server",
		Long: `Expose list_attachments, get_attachment_metadata, download_all_attachments
and download_specific_attachment to an MCP host.

Transports:
  stdio  JSON-RPC over stdin/stdout (default)
  sse    Server-Sent Events at http://host:port/sse
  http   Streamable HTTP at http://host:port/mcp`,
		Example: `  confattach serve
  confattach serve --transport sse --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport = strings.ToLower(strings.TrimSpace(transport))
			switch transport {
			case "stdio", "sse", "http":
			default:
				return &usageError{fmt.Errorf("unknown transport: %s", transport)}
			}

			slog.Info("starting confluence attachments server",
				"confluence_url", cfg.ConfluenceURL,
				"debug", cfg.Debug,
			)

			addr := net.JoinHostPort(host, strconv.Itoa(port))
			s := tools.NewServer(tools.NewService(cfg), version)
			return tools.Serve(cmd.Context(), s, transport, addr)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", cfg.Transport, "Transport to serve on (stdio, sse, http)")
	cmd.Flags().StringVar(&host, "host", cfg.Host, "Host to bind for sse and http transports")
	cmd.Flags().IntVar(&port, "port", cfg.Port, "Port to bind for sse and http transports")

	return cmd
}
