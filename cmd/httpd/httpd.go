// Package httpd implements the HTTP API for the research service.
package httpd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/goveille/cmd/common"
	"github.com/jonesrussell/goveille/internal/domain"
)

const shutdownTimeout = 30 * time.Second

// Command returns the httpd command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the research API over HTTP",
		Long: `Httpd exposes the research pipeline over HTTP: POST a batch of
entities and receive the full run report, plus backend state, cache stats,
health and Prometheus metrics endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return start(cmd.Context())
		},
	}
}

func start(ctx context.Context) error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	stack, err := common.NewStack(deps)
	if err != nil {
		return err
	}
	defer stack.Close()

	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         deps.Config.Server.Address,
		Handler:      newRouter(stack),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	log := deps.Logger.WithComponent("httpd")
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// researchRequest is the POST /api/v1/research body.
type researchRequest struct {
	Entities []domain.Entity `json:"entities" binding:"required,min=1"`
}

func newRouter(stack *common.Stack) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(stack.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/research", handleResearch(stack))
	v1.GET("/backends", handleBackends(stack))
	v1.GET("/cache", handleCache(stack))

	return router
}

func handleResearch(stack *common.Stack) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req researchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		report := stack.Pipeline.Run(c.Request.Context(), req.Entities)
		c.JSON(http.StatusOK, report)
	}
}

// handleBackends reports per-backend counters and the protected backend's
// quota consumption.
func handleBackends(stack *common.Stack) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		snapshot := stack.States.Snapshot()

		states := make(map[string]gin.H, len(snapshot))
		for name, state := range snapshot {
			entry := gin.H{
				"successes": state.Successes,
				"failures":  state.Failures,
			}
			if !state.LastCall.IsZero() {
				entry["last_call"] = state.LastCall
			}
			if state.CooldownUntil.After(now) {
				entry["cooldown_until"] = state.CooldownUntil
			}
			states[name] = entry
		}

		c.JSON(http.StatusOK, gin.H{
			"backends":            states,
			"protected_calls_24h": stack.Cascade.Breaker().CallsInWindow(now),
		})
	}
}

func handleCache(stack *common.Stack) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := stack.Cache.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
