package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/config"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/controls"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/slack"
)

// HTTPServer is the gin-based HTTP surface for the Slack slash commands.
type HTTPServer struct {
	config *config.Config
	engine *gin.Engine
	server *http.Server
	slack  *slack.Handler
}

// NewHTTPServer creates the HTTP server and wires its routes.
func NewHTTPServer(cfg *config.Config, dispatcher *controls.Dispatcher) *HTTPServer {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &HTTPServer{
		config: cfg,
		engine: gin.New(),
		slack:  slack.NewHandler(dispatcher),
	}

	s.registerMiddlewares()
	s.registerRoutes()

	return s
}

// registerMiddlewares registers recovery and logging middleware.
func (s *HTTPServer) registerMiddlewares() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
}

// loggingMiddleware logs each request and its response status.
func (s *HTTPServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logx.Info("HTTP %s %s, status %d, duration %s",
			method, path, c.Writer.Status(), time.Since(start))
	}
}

// registerRoutes registers the health check and command routes.
func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.POST("/help", s.slack.Help)

	ec2 := s.engine.Group("/ec2")
	{
		ec2.POST("/power", s.slack.Power)
		ec2.POST("/schedule", s.slack.Schedule)
		ec2.POST("/disable-schedule", s.slack.DisableSchedule)
		ec2.POST("/stakeholder", s.slack.Stakeholder)
		ec2.POST("/list", s.slack.List)
		ec2.POST("/search", s.slack.Search)
	}
}

// handleHealth reports liveness.
func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"region": s.config.AWS.Region,
	})
}

// Start runs the server until the listener fails or Stop is called.
func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	logx.Info("HTTP server listening on %s", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	logx.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
