package server

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resume-tailor/resume-tailor-go/internal/config"
	"github.com/resume-tailor/resume-tailor-go/internal/generation"
	"github.com/resume-tailor/resume-tailor-go/internal/guardrails"
	"github.com/resume-tailor/resume-tailor-go/internal/provider"
	"github.com/resume-tailor/resume-tailor-go/internal/routing"
	"github.com/resume-tailor/resume-tailor-go/internal/server/middleware"
)

const (
	EndPointIndex          = "/"
	EndPointCoverLetter    = "/generate_cover_letter"
	EndPointResizeResume   = "/resize_resume"
	EndPointExtractResume  = "/extract_resume_text"
	EndPointHealth         = "/health"
	EndPointReady          = "/ready"
	EndPointModels         = "/v1/models"
	shutdownTimeout        = 30 * time.Second
	readinessProbeDeadline = 2 * time.Second
)

//go:embed static/index.html
var indexHTML []byte

type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	router *routing.Router
	gen    *generation.Service
	guards *guardrails.Guardrails
}

// New wires the HTTP routes. rt must have a default provider registered.
func New(cfg *config.Config, rt *routing.Router) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
		router: rt,
		gen:    generation.New(rt, cfg.Ollama.DefaultModel, cfg.Ollama.Temperature),
		guards: guardrails.New(cfg.Limits.MaxInputBytes),
	}
	srv.setupMiddleware()
	srv.registerRoutes()
	return srv
}

func (s *Server) setupMiddleware() {
	s.engine.Use(middleware.RequestID())
	// outside Recovery so panicking requests still get a log line
	s.engine.Use(middleware.AccessLog())
	s.engine.Use(middleware.Recovery())
	if s.cfg.TelemetryURL != "" {
		s.engine.Use(middleware.Trace(s.cfg.ServiceName))
		s.engine.Use(middleware.TraceContext())
	}
	s.engine.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	if s.cfg.Metrics.Enabled {
		s.engine.Use(middleware.Metrics())
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET(EndPointIndex, s.index)
	s.engine.GET(EndPointHealth, s.health)
	s.engine.GET(EndPointReady, s.ready)
	if s.cfg.Metrics.Enabled {
		s.engine.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	limited := s.engine.Group("/")
	limited.Use(middleware.RateLimit(s.cfg.RateLimit.RequestsPerMinute))
	limited.POST(EndPointCoverLetter, s.generateCoverLetter)
	limited.POST(EndPointResizeResume, s.resizeResume)
	limited.POST(EndPointExtractResume, s.extractResumeText)
	limited.GET(EndPointModels, s.listModels)
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Address).Info("http server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ready probes the default backend when it supports it.
func (s *Server) ready(c *gin.Context) {
	name, p := s.router.Default()
	pinger, ok := p.(provider.Pinger)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessProbeDeadline)
	defer cancel()
	start := time.Now()
	err := pinger.Ping(ctx)
	check := gin.H{"model": name, "latency_ms": time.Since(start).Milliseconds()}
	if err != nil {
		check["status"] = "error"
		check["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": gin.H{"inference": check}})
		return
	}
	check["status"] = "ok"
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": gin.H{"inference": check}})
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.router.Models()})
}
