// Package server exposes the extractors over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ytget/invidious"
	"github.com/ytget/invidious/errs"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/types"
)

const shutdownTimeout = 10 * time.Second

// Extractor is the extraction surface the server needs.
type Extractor interface {
	ExtractVideo(ctx context.Context, rawURL string) (*types.VideoInfo, error)
	ExtractPlaylist(ctx context.Context, rawURL string) (*types.PlaylistInfo, error)
	Extract(ctx context.Context, rawURL string) (*invidious.Result, error)
}

// Options configures the server.
type Options struct {
	Addr          string
	CORSOrigins   []string
	ProbeSchedule string
}

// Server represents the API server
type Server struct {
	router *gin.Engine
	ex     Extractor
	health *Health
	opts   Options
}

// New creates a new API server. health may be nil, in which case the
// instance list is served without probe results.
func New(ex Extractor, health *Health, opts Options) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if len(opts.CORSOrigins) > 0 {
		cfg := cors.Config{
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}
		for _, o := range opts.CORSOrigins {
			if o == "*" {
				cfg.AllowAllOrigins = true
			}
		}
		if !cfg.AllowAllOrigins {
			cfg.AllowOrigins = opts.CORSOrigins
		}
		router.Use(cors.New(cfg))
	}

	if health == nil {
		health = NewHealth(nil)
	}
	s := &Server{
		router: router,
		ex:     ex,
		health: health,
		opts:   opts,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	v1 := s.router.Group("/api/v1")
	v1.GET("/instances", s.getInstances)
	v1.GET("/video", s.getVideo)
	v1.GET("/playlist", s.getPlaylist)
	v1.GET("/extract", s.getExtract)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on opts.Addr until ctx is done, then shuts down gracefully.
// The instance prober runs on its schedule for the lifetime of the server.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent(logger.ComponentServer)

	if s.opts.ProbeSchedule != "" {
		stop, err := s.health.Schedule(ctx, s.opts.ProbeSchedule)
		if err != nil {
			return err
		}
		defer stop()
	}

	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", map[string]interface{}{"addr": s.opts.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("server stopping", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) getInstances(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instances": s.health.Snapshot(),
	})
}

func (s *Server) getVideo(c *gin.Context) {
	rawURL, ok := requireURL(c)
	if !ok {
		return
	}
	info, err := s.ex.ExtractVideo(c.Request.Context(), rawURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) getPlaylist(c *gin.Context) {
	rawURL, ok := requireURL(c)
	if !ok {
		return
	}
	info, err := s.ex.ExtractPlaylist(c.Request.Context(), rawURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, playlistResponse{Type: info.Type(), PlaylistInfo: info})
}

func (s *Server) getExtract(c *gin.Context) {
	rawURL, ok := requireURL(c)
	if !ok {
		return
	}
	res, err := s.ex.Extract(c.Request.Context(), rawURL)
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Playlist != nil {
		c.JSON(http.StatusOK, playlistResponse{Type: res.Playlist.Type(), PlaylistInfo: res.Playlist})
		return
	}
	c.JSON(http.StatusOK, res.Video)
}

// playlistResponse adds the record kind to a playlist.
type playlistResponse struct {
	Type string `json:"_type"`
	*types.PlaylistInfo
}

func requireURL(c *gin.Context) (string, bool) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "url query parameter is required",
		})
		return "", false
	}
	return rawURL, true
}

// statusFor maps extraction errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrUnsupportedURL), errors.Is(err, errs.ErrMissingHost):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrAgeRestricted):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errs.ErrRetriesExhausted),
		errors.Is(err, errs.ErrUnexpectedStatus),
		errors.Is(err, errs.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithComponent(logger.ComponentServer).Error("extraction failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}
	c.JSON(status, gin.H{
		"error":    err.Error(),
		"expected": errs.IsExpected(err),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithComponent(logger.ComponentServer).Debug("request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
