package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gitlab.com/tinyland/lab/pulse-view/collectors"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":8080"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server samples the host on an interval and streams the snapshots.
type Server struct {
	hub      *Hub
	sampler  collectors.Sampler
	interval time.Duration
	logger   *slog.Logger
	router   *gin.Engine
}

// NewServer wires a hub and routes around sampler.
func NewServer(sampler collectors.Sampler, interval time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if interval <= 0 {
		interval = collectors.DefaultInterval
	}
	s := &Server{
		hub:      NewHub(logger),
		sampler:  sampler,
		interval: interval,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/ws", s.handleWebSocket)
	api := r.Group("/api")
	{
		api.GET("/stats", s.handleStats)
	}
	r.GET("/health", s.handleHealth)
	return r
}

// requestLogger logs each request through slog instead of gin's writer.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}
	cl := &client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: c.ClientIP(),
	}
	if !s.hub.join(cl) {
		conn.Close()
		return
	}
	go cl.writePump()
	go cl.readPump()
}

func (s *Server) handleStats(c *gin.Context) {
	snap, err := s.sampler.Sample(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Access-Control-Allow-Origin", "*")
	c.JSON(http.StatusOK, snap)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"clients":   s.hub.Clients(),
	})
}

// Run starts the hub, the sampling loop, and the HTTP listener on addr. It
// blocks until ctx is done, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	go func() {
		_ = collectors.Run(ctx, s.sampler, s.interval, s.logger, func(snap metrics.Snapshot) {
			if err := s.hub.Publish(snap); err != nil {
				s.logger.Warn("encode snapshot", "error", err)
			}
		})
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("agent listening", "addr", addr, "interval", s.interval)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("agent: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("agent: shutdown: %w", err)
	}
	return ctx.Err()
}

// NormalizeAddr turns a bare port such as "8080" into ":8080".
func NormalizeAddr(port string) string {
	switch {
	case port == "":
		return DefaultAddr
	case !strings.Contains(port, ":"):
		return ":" + port
	default:
		return port
	}
}
