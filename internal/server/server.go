package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jobfair-live/config"
	"jobfair-live/internal/handler"
	"jobfair-live/internal/middleware"
	"jobfair-live/internal/transport/httpdto"
	"jobfair-live/internal/websocket"
	"jobfair-live/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Queue       *handler.QueueHandler
	Call        *handler.CallHandler
	Interpreter *handler.InterpreterHandler
	Presence    *handler.PresenceHandler
	Health      *handler.HealthHandler
	WebSocket   *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	switch cfg.AppMode {
	case ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetupRoutes mounts every route. limiter may be nil, which disables rate
// limiting.
func (s *Server) SetupRoutes(h *Handlers, auth middleware.Authenticator, limiter middleware.Limiter) {
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", h.Health.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/ws", h.WebSocket.Connect)

	callLimit, chatLimit := noLimit, noLimit
	if limiter != nil {
		callLimit = middleware.CallRateLimitMiddleware(limiter)
		chatLimit = middleware.ChatRateLimitMiddleware(limiter)
	}

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(auth))
	{
		v1.POST("/queues/:boothId/entries", h.Queue.Join)
		v1.GET("/queues/:boothId/entries", h.Queue.ListByBooth)

		v1.GET("/queue-entries/:id", h.Queue.Get)
		v1.POST("/queue-entries/:id/invite", h.Queue.Invite)
		v1.POST("/queue-entries/:id/leave", h.Queue.Leave)
		v1.POST("/queue-entries/:id/complete", h.Queue.Complete)
		v1.GET("/queue-entries/:id/calls", h.Call.ListByQueueEntry)

		v1.POST("/calls", callLimit, h.Call.Create)
		v1.GET("/calls/active", h.Call.Active)
		v1.GET("/calls/:id", h.Call.Get)
		v1.POST("/calls/:id/join", h.Call.Join)
		v1.POST("/calls/:id/interpreters", callLimit, h.Call.InviteInterpreter)
		v1.POST("/calls/:id/decline", h.Call.Decline)
		v1.POST("/calls/:id/messages", chatLimit, h.Call.AddMessage)
		v1.POST("/calls/:id/leave", h.Call.Leave)
		v1.POST("/calls/:id/end", h.Call.End)
		v1.GET("/calls/:id/roster", h.Call.Roster)

		v1.GET("/booths/:boothId/interpreters", h.Interpreter.ListAvailable)
		v1.PUT("/interpreters/me/status", h.Interpreter.SetStatus)

		v1.GET("/live-stats", h.Presence.LiveStats)
	}
}

func noLimit(c *gin.Context) { c.Next() }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Infof("Shutdown requested, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}
	s.logger.Infof("Server stopped gracefully")
	return nil
}
