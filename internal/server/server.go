package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dodaa08/uniswap-leaderboard/internal/config"
	"github.com/dodaa08/uniswap-leaderboard/internal/ingest"
	"github.com/dodaa08/uniswap-leaderboard/internal/model"
)

// LeaderboardStore provides the read-side queries.
type LeaderboardStore interface {
	Leaderboard(ctx context.Context, limit, offset int) ([]model.Trader, error)
	TraderByAddress(ctx context.Context, address string) (model.Trader, error)
}

// SyncTrigger runs the ingestion pipeline.
type SyncTrigger interface {
	Run(ctx context.Context) (ingest.Summary, error)
}

// Server is the HTTP API for the leaderboard service.
type Server struct {
	store       LeaderboardStore
	syncer      SyncTrigger
	broadcaster *Broadcaster
	logger      *slog.Logger
	httpServer  *http.Server
}

// New creates a Server with all routes registered.
func New(cfg config.ServerConfig, store LeaderboardStore, syncer SyncTrigger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:       store,
		syncer:      syncer,
		broadcaster: NewBroadcaster(logger),
		logger:      logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.POST("/sync", s.handleSync)
	v1.GET("/leaderboard", s.handleLeaderboard)
	v1.GET("/trader/:address", s.handleTrader)
	v1.GET("/ws", s.broadcaster.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// BroadcastSummary pushes a run summary to connected websocket clients. The
// scheduler uses it for runs the HTTP trigger did not initiate.
func (s *Server) BroadcastSummary(summary ingest.Summary) {
	s.broadcaster.Broadcast(summary)
}

// Start begins listening for HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// corsMiddleware allows the leaderboard frontend to call the API from any
// origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
