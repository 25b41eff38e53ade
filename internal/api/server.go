package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"olymatch/internal/config"
)

// Server represents the HTTP server with all configured routes and middleware.
type Server struct {
	app    *fiber.App
	config *config.ServerConfig
	logger *slog.Logger

	// Handlers
	likeHandler     *LikeHandler
	userHandler     *UserHandler
	olympiadHandler *OlympiadHandler
}

// ServerDeps contains all dependencies required to create a new Server.
type ServerDeps struct {
	Config          *config.ServerConfig
	Logger          *slog.Logger
	LikeHandler     *LikeHandler
	UserHandler     *UserHandler
	OlympiadHandler *OlympiadHandler
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		CaseSensitive:         true,
		ReadTimeout:           deps.Config.ReadTimeout,
		WriteTimeout:          deps.Config.WriteTimeout,
		IdleTimeout:           deps.Config.IdleTimeout,
		ErrorHandler:          customErrorHandler,
	})

	s := &Server{
		app:             app,
		config:          deps.Config,
		logger:          deps.Logger,
		likeHandler:     deps.LikeHandler,
		userHandler:     deps.UserHandler,
		olympiadHandler: deps.OlympiadHandler,
	}

	s.registerMiddleware()
	s.registerRoutes()

	return s
}

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	// Recovery middleware to handle panics
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware for tracing
	s.app.Use(requestid.New())

	// Logger middleware for request logging
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// Health check endpoint (outside versioned API)
	s.app.Get("/healthz", s.healthCheck)

	// Prometheus metrics endpoint
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	v1 := s.app.Group("/v1")

	// Like pipeline: submission is asynchronous, reads are direct
	v1.Post("/likes", s.likeHandler.Submit)
	v1.Patch("/likes/:id/read", s.likeHandler.MarkRead)
	v1.Get("/users/:tgID/likes", s.likeHandler.ListReceived)

	// Profile CRUD
	v1.Post("/users", s.userHandler.Create)
	v1.Get("/users", s.userHandler.List)
	v1.Get("/users/:tgID", s.userHandler.GetByTelegramID)
	v1.Put("/users/:tgID", s.userHandler.Update)
	v1.Delete("/users/:tgID", s.userHandler.Delete)

	// Achievement CRUD
	v1.Post("/olympiads", s.olympiadHandler.Create)
	v1.Get("/users/:tgID/olympiads", s.olympiadHandler.ListByUser)
	v1.Put("/olympiads/:id", s.olympiadHandler.Update)
	v1.Delete("/olympiads/:id", s.olympiadHandler.Delete)
}

// healthCheck returns the health status of the service.
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return Success(c, map[string]string{
		"status": "healthy",
	})
}

// App exposes the underlying fiber app to tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.logger.Info("starting HTTP server", "address", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler handles errors returned from handlers.
func customErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return Error(c, e.Code, ErrCodeInternalError, e.Message)
	}

	return InternalError(c, fmt.Sprintf("unexpected error: %v", err))
}
