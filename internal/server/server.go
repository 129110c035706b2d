// Package server hosts interactive timeline sessions over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/buffos/revenue-timeline/internal/metrics"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the router.
type Options struct {
	CORSOrigins []string
}

// SetupRouter wires every route onto a new gin engine.
func SetupRouter(store *Store, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		config.AllowOrigins = opts.CORSOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	h := &handler{store: store, points: timeline.Aggregate(store.Records())}
	metrics.DatasetRecords.Set(float64(len(store.Records())))
	metrics.DatasetYears.Set(float64(len(h.points)))

	api := router.Group("/api")
	{
		api.GET("/series", h.getSeries)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.createSession)
			sessions.GET("/:id", h.getState)
			sessions.DELETE("/:id", h.deleteSession)
			sessions.GET("/:id/svg", h.getSVG)
			sessions.GET("/:id/page", h.getPage)
			sessions.GET("/:id/events", h.getEvents)
			sessions.POST("/:id/resize", h.resize)
			sessions.POST("/:id/pointer", h.pointer)
			sessions.POST("/:id/leave", h.leave)
			sessions.POST("/:id/brush", h.brush)
			sessions.POST("/:id/select", h.selectYears)
			sessions.POST("/:id/clear", h.clear)
			sessions.POST("/:id/highlight", h.highlight)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": store.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency by route pattern.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// disposes every session.
func Run(ctx context.Context, addr string, store *Store, opts Options) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: SetupRouter(store, opts),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		store.Close()
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	store.Close()
	log.Println("Server exited")
	return err
}
