package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/store"
	"github.com/macropower/cardfont/pkg/transform"
	"github.com/macropower/cardfont/pkg/version"
)

// Endpoint is the path the streamable HTTP handler is mounted on.
const Endpoint = "/mcp"

// Server implements the MCP server for cardfont.
type Server struct {
	server  *mcp.Server
	tracer  trace.Tracer
	cards   card.Source
	panels  *store.Branch
	fonts   transform.FontSource
	address string
}

// NewServer creates a [Server] that searches cards from src with the rule
// sets stored under panels, and renders them with fonts from fs. An empty
// address serves over stdio.
func NewServer(address string, src card.Source, panels *store.Branch, fs transform.FontSource) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		tracer:  otel.Tracer("mcp"),
		cards:   src,
		panels:  panels,
		fonts:   fs,
		address: address,
	}

	s.registerTools()

	return s
}

// registerTools registers all available tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_cards",
		Description: "List the cards selected by a panel, or by every panel when no panel is given.",
	}, WithTracing(s.tracer, "find_cards", s.handleFindCards))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_card",
		Description: "Explain how each panel's predicates evaluate for a card, and which panel applies to a render kind.",
	}, WithTracing(s.tracer, "evaluate_card", s.handleEvaluateCard))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "render_card",
		Description: "Render a card's question or answer text as it would be shown for a render kind.",
	}, WithTracing(s.tracer, "render_card", s.handleRenderCard))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_fonts",
		Description: "List the enabled font families per writing system.",
	}, WithTracing(s.tracer, "list_fonts", s.handleListFonts))
}

// Server returns the underlying MCP server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Handler returns an HTTP handler serving the MCP endpoint and a health check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Handle(Endpoint, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))

	return r
}

// Serve starts the MCP server and blocks until ctx is canceled or the
// transport fails.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),

		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("MCP server failed: %w", err)
		}

		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	}
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr}

	err := s.server.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
