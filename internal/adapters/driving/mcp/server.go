package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const (
	serverName      = "corpus"
	shutdownTimeout = 5 * time.Second
	instructions    = "Read-only access to a local document corpus. " +
		"Use search to find chunks, chunk_context to widen a hit, " +
		"and get_document_chunks to read a document by offset."
)

// Server exposes the search and document services to MCP clients.
type Server struct {
	ports *Ports
	sdk   *mcp.Server
}

// NewServer registers all tools and resources for ports.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingSearchService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mcp ports: %w", err)
	}

	sdk := mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: Version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	s := &Server{ports: ports, sdk: sdk}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run speaks JSON-RPC over stdin/stdout until the client disconnects or
// ctx is done.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving over stdio")
	return s.sdk.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.sdk
	}, nil)
}

// RunHTTP listens on addr and serves until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts MCP HTTP connections on ln. Cancelling ctx shuts the
// server down gracefully and Serve returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("mcp: listening on %s", ln.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
