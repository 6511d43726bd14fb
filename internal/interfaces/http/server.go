// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
)

const maxRequestBody = 10 << 20

// HealthChecker is a dependency the readiness probe pings
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	log        *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time

	database HealthChecker
	cache    HealthChecker
}

// NewServer creates a new HTTP server instance with all routes mounted
func NewServer(cfg *config.Config, database, cache HealthChecker, redisClient *redis.Client, svc *routes.Services, log *logrus.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		log:       log,
		gin:       gin.New(),
		startedAt: time.Now(),
		database:  database,
		cache:     cache,
	}

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Warn("Invalid trusted proxies, ignoring")
		}
	}

	s.setupMiddleware(redisClient)
	s.setupRoutes(svc)
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": "http://localhost:" + s.config.Server.Port + "/api/v1",
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware(redisClient *redis.Client) {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, redisClient, s.log))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes(svc *routes.Services) {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, svc, s.config, s.log)
}

// healthCheck reports liveness only
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck pings the database and Redis
func (s *Server) readinessCheck(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"database": "ok", "redis": "ok"}
	ready := true

	if err := s.database.Health(ctx); err != nil {
		s.log.WithError(err).Warn("Database readiness check failed")
		checks["database"] = "unavailable"
		ready = false
	}
	if err := s.cache.Health(ctx); err != nil {
		s.log.WithError(err).Warn("Redis readiness check failed")
		checks["redis"] = "unavailable"
		ready = false
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).String(),
	})
}
