// Package server assembles the reference authority: storage, token service,
// HTTP API, push channel and middleware chain.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/medigrid/layoutsync/internal/config"
	"github.com/medigrid/layoutsync/internal/server/handlers"
	"github.com/medigrid/layoutsync/internal/server/middleware"
	"github.com/medigrid/layoutsync/internal/server/realtime"
	"github.com/medigrid/layoutsync/internal/server/storage/sqlite"
	"github.com/medigrid/layoutsync/internal/server/token"
)

// Token mint endpoint rate limit, per client IP.
const (
	tokenMintRate   = 30
	tokenMintWindow = time.Minute
)

// Server is the assembled authority.
type Server struct {
	logger  *slog.Logger
	storage *sqlite.Storage
	httpSrv *http.Server
}

// New builds the authority from its configuration.
func New(ctx context.Context, cfg config.ServerConfig, version string, logger *slog.Logger) (*Server, error) {
	tokenTTL, err := time.ParseDuration(cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token_ttl: %w", err)
	}
	wsTokenTTL, err := time.ParseDuration(cfg.WSTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid ws_token_ttl: %w", err)
	}

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	tokens := token.NewService(cfg.JWTSecret, tokenTTL, wsTokenTTL)
	hub := realtime.NewHub(logger)

	authHandler := handlers.NewAuthHandler(logger, tokens)
	sessionsHandler := handlers.NewSessionsHandler(logger, store, store, tokens, hub)
	layoutHandler := handlers.NewLayoutHandler(logger, store, hub)
	healthHandler := handlers.NewHealthHandler(version)
	wsHandler := realtime.NewHandler(logger, hub, store, store, tokens)

	authn := middleware.AuthMiddleware(logger, tokens)
	mintLimit := middleware.RateLimitMiddleware(tokenMintRate, tokenMintWindow, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("POST /v1/auth/token", mintLimit(http.HandlerFunc(authHandler.MintToken)))

	mux.Handle("POST /v1/sessions", authn(http.HandlerFunc(sessionsHandler.Create)))
	mux.Handle("GET /v1/sessions", authn(http.HandlerFunc(sessionsHandler.List)))
	mux.Handle("GET /v1/sessions/{id}", authn(http.HandlerFunc(sessionsHandler.Get)))
	mux.Handle("POST /v1/sessions/{id}/start", authn(http.HandlerFunc(sessionsHandler.Start)))
	mux.Handle("POST /v1/sessions/{id}/pause", authn(http.HandlerFunc(sessionsHandler.Pause)))
	mux.Handle("POST /v1/sessions/{id}/end", authn(http.HandlerFunc(sessionsHandler.End)))
	mux.Handle("POST /v1/sessions/{id}/participants:join", authn(http.HandlerFunc(sessionsHandler.Join)))
	mux.Handle("GET /v1/sessions/{id}/layout", authn(http.HandlerFunc(layoutHandler.Get)))
	mux.Handle("POST /v1/sessions/{id}/layout", authn(http.HandlerFunc(layoutHandler.Publish)))

	// The channel authenticates with its own session-scoped token, not the
	// bearer middleware.
	mux.HandleFunc("GET /v1/sessions/{id}/ws", wsHandler.ServeWS)

	var handler http.Handler = mux
	handler = middleware.RecoveryMiddleware(logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)

	return &Server{
		logger:  logger,
		storage: store,
		httpSrv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Close releases storage without serving. Run performs its own cleanup.
func (s *Server) Close() error {
	return s.storage.Close()
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpSrv.Addr)
		errC <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return s.storage.Close()
}
