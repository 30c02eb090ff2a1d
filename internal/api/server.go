// Package api exposes the triage engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/app"
	"github.com/symptom-triage-engine/internal/middleware"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	app      *app.App
	logger   *logrus.Logger
	sessions *SessionRegistry
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(a *app.App) (*Server, error) {
	cfg := a.Config

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions, err := NewSessionRegistry(a.Service, cfg.Session.MaxSessions, a.Logger)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.CorrelationID())
	router.Use(middleware.Recovery(a.Logger))
	router.Use(middleware.AuditLogger(a.Logger))
	router.Use(middleware.SecurityHeaders())
	if cfg.RateLimit.Enabled {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		router.Use(limiter.Middleware())
	}

	server := &Server{
		app:      a,
		logger:   a.Logger,
		sessions: sessions,
		router:   router,
	}

	// Setup routes
	server.setupRoutes()

	return server, nil
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.app.Config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/symptoms/resolve", s.handleResolve)

		v1.POST("/triage/analyze", s.handleAnalyze)
		v1.GET("/triage/last", s.handleLastResult)
		v1.GET("/triage/history", s.handleHistory)
		v1.DELETE("/triage/history", s.handleClearHistory)
		v1.GET("/triage/stats", s.handleStats)

		v1.POST("/sessions", s.handleCreateSession)
		v1.GET("/sessions/:id", s.handleGetSession)
		v1.DELETE("/sessions/:id", s.handleDeleteSession)
		v1.PUT("/sessions/:id/text", s.handleUpdateSessionText)
		v1.POST("/sessions/:id/toggle", s.handleToggleSymptom)
		v1.POST("/sessions/:id/analyze", s.handleAnalyzeSession)
		v1.GET("/sessions/:id/live", s.handleLive)
	}
}
