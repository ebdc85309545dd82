// Package httpapi exposes the assistant over HTTP using Echo.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// Server hosts the HTTP API.
type Server struct {
	echo      *echo.Echo
	ingestion driving.IngestionService
	answers   driving.AnswerService
	requests  driving.RequestService
	opts      Options
}

// Options configures optional server behaviour.
type Options struct {
	// StaticDir, when set, serves an admin UI from this directory
	// under /admin-x7k9m2. The obscured path is NOT access control;
	// see the README.
	StaticDir string

	// LLMProvider and LLMModel are reported by the health endpoint.
	LLMProvider string
	LLMModel    string

	// Version is reported by the root endpoint.
	Version string
}

// AdminPath is where the static admin UI is mounted when configured.
const AdminPath = "/admin-x7k9m2"

// New builds the server and registers all routes.
func New(ingestion driving.IngestionService, answers driving.AnswerService, requests driving.RequestService, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	// The frontend is served from arbitrary origins (file://, static
	// hosts), so CORS is wide open.
	e.Use(middleware.CORS())

	s := &Server{
		echo:      e,
		ingestion: ingestion,
		answers:   answers,
		requests:  requests,
		opts:      opts,
	}

	e.GET("/", s.handleRoot)
	e.GET("/api/health", s.handleHealth)
	e.POST("/api/ask", s.handleAsk)
	e.POST("/api/upload-bylaws", s.handleUpload)
	e.POST("/api/submit-request", s.handleSubmitRequest)
	e.GET("/api/test-llm", s.handleTestLLM)

	if opts.StaticDir != "" {
		e.Static(AdminPath, opts.StaticDir)
		logger.Info("Serving admin UI from %s at %s", opts.StaticDir, AdminPath)
	}

	return s
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start(addr string) error {
	logger.Info("HTTP API listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
