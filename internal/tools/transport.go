package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Serve runs the MCP server on the named transport until ctx is cancelled
// or the transport fails. The sse and http transports also answer
// GET /tools with the tool definitions.
func Serve(ctx context.Context, s *Server, transport, addr string) error {
	switch transport {
	case "stdio":
		slog.Info("starting MCP server", "transport", transport)
		return server.ServeStdio(s.core)
	case "sse":
		slog.Info("starting MCP server", "transport", transport,
			"sse_endpoint", "http://"+addr+"/sse",
			"tools_endpoint", "http://"+addr+"/tools",
		)
		return serveHTTP(ctx, addr, s.routes(server.NewSSEServer(s.core)))
	case "http":
		slog.Info("starting MCP server", "transport", transport,
			"endpoint", "http://"+addr+"/mcp",
			"tools_endpoint", "http://"+addr+"/tools",
		)
		return serveHTTP(ctx, addr, s.routes(server.NewStreamableHTTPServer(s.core)))
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}
}

// routes mounts the tool listing next to the MCP transport handler.
func (s *Server) routes(transport http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools", s.handleTools)
	mux.Handle("/", transport)
	return mux
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.tools); err != nil {
		slog.Error("failed to write tool listing", "error", err)
	}
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		// Streams end with the server context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("stopping MCP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return err
		}
		return nil
	}
}
