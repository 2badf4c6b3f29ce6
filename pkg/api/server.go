// Package api provides the HTTP server: session REST endpoints plus the
// live coaching WebSocket relay on one Fiber app.
package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/plank-coach/pkg/relay"
	"github.com/teslashibe/plank-coach/pkg/store"
)

// Server is the plank-coach HTTP server
type Server struct {
	app     *fiber.App
	store   store.Store
	hub     *relay.Hub
	logger  *slog.Logger
	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithAccessLog enables per-request access logging.
func WithAccessLog() Option {
	return func(s *Server) {
		s.app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
}

// NewServer creates a server backed by st. When hub is non-nil its
// WebSocket and inspection routes are mounted too.
func NewServer(st store.Store, hub *relay.Hub, opts ...Option) *Server {
	s := &Server{
		store:   st,
		hub:     hub,
		logger:  slog.Default(),
		started: time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Plank Coach",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app = app

	app.Use(recover.New())
	app.Use(cors.New())

	for _, opt := range opts {
		opt(s)
	}

	app.Get("/health", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Patch("/sessions/:id", s.handleUpdateSession)
	api.Get("/sessions/:id/analysis", s.handleListAnalysis)

	if hub != nil {
		hub.RegisterAPIRoutes(api)
		hub.RegisterRoutes(app)
	}

	return s
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleError renders unhandled errors as JSON
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
