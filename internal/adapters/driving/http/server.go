package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/harvora/context-core/internal/core/ports/driven"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	chatService   driving.ChatService
	docService    driving.DocumentService
	promptService driving.PromptService

	// Infrastructure
	queue       driven.JobQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)

	jwtSecret string
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// JWTSecret verifies bearer tokens on admin routes. Tokens are minted
	// by the external auth service sharing this secret.
	JWTSecret string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	chatService driving.ChatService,
	docService driving.DocumentService,
	promptService driving.PromptService,
	queue driven.JobQueue,
	db Pinger,
	redisClient Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		logger:        logger.With("component", "http"),
		chatService:   chatService,
		docService:    docService,
		promptService: promptService,
		queue:         queue,
		db:            db,
		redisClient:   redisClient,
		jwtSecret:     cfg.JWTSecret,
	}

	s.setupRoutes()

	recovery := NewRecoveryMiddleware(s.logger)
	logging := NewLoggingMiddleware(s.logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.jwtSecret)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Query endpoint (public; the gateway in front of this service applies
	// its own rate limiting and session handling)
	s.router.HandleFunc("POST /query", s.handleQuery)

	// Document management (admin-only)
	s.router.Handle("GET /admin/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListDocuments)))
	s.router.Handle("POST /admin/documents",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUploadDocument)))
	s.router.Handle("GET /admin/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("DELETE /admin/documents/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteDocument)))
	s.router.Handle("POST /admin/documents/{id}/reindex",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReindexDocument)))

	// System prompt configuration (admin-only)
	s.router.Handle("GET /admin/prompt",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetPrompt)))
	s.router.Handle("PUT /admin/prompt",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUpdatePrompt)))

	// Queue statistics (admin-only)
	s.router.Handle("GET /admin/stats",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleQueueStats)))
}

// Start begins serving requests. It blocks until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
