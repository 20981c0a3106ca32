// Package relay implements the local HTTP forwarder that bridges
// browser- or CLI-originated requests to the Jira and GitHub APIs,
// attaching the correct authentication scheme per upstream. It also
// provides the Go client used to call a running relay.
//
// The relay holds no state across requests and never retries: it
// exists only because browsers cannot call these APIs cross-origin
// and because credentials should not be embedded in page code.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/logging"
)

// Server is the relay HTTP server.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
}

// NewServer builds the relay with its two routes registered.
func NewServer(cfg *config.Config) *Server {
	engine := gin.New()
	// Recovery keeps the no-unhandled-fault guarantee: any panic in a
	// handler becomes a 500 instead of tearing down the relay.
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	h := newHandler(cfg)
	engine.POST("/api/jira/issue", h.CreateJiraIssue)
	engine.POST("/api/github/issue", h.CreateGitHubIssue)

	return &Server{
		cfg:    cfg,
		engine: engine,
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is cancelled or an interrupt arrives,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Relay.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("relay server starting", "port", s.cfg.Relay.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("relay server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	logging.Info("relay server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down relay server: %w", err)
	}
	return nil
}

// corsMiddleware allows browser pages served from any origin to call
// the relay, which is the relay's reason to exist.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, x-jira-auth-token, x-github-auth-token")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
