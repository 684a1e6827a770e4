// Package server exposes the tender pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlas-conseil/tenderflow/internal/engine"
	"github.com/atlas-conseil/tenderflow/internal/extraction"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

// Server wires the engine, storage and extractor behind a gin router.
type Server struct {
	engine    *engine.Engine
	storage   service.Storage
	extractor *extraction.Extractor
	router    *gin.Engine
	http      *http.Server
}

// Config holds HTTP server configuration.
type Config struct {
	Addr  string
	Debug bool
}

// New creates a server. The extractor may be nil when no extraction provider
// is configured; the extraction endpoints then answer 503.
func New(cfg Config, eng *engine.Engine, storage service.Storage, extractor *extraction.Extractor) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:    eng,
		storage:   storage,
		extractor: extractor,
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	s.registerRoutes(router)
	s.router = router

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/api/health", s.health)

	tenders := router.Group("/api/tenders")
	{
		tenders.POST("", s.saveTender)
		tenders.GET("", s.listTenders)
		tenders.GET("/:id", s.getTender)
		tenders.POST("/:id/duplicate", s.duplicateTender)
	}

	router.GET("/api/references/next", s.nextReference)
	router.GET("/api/options", s.options)
	router.GET("/api/stats", s.dashboardStats)

	analytics := router.Group("/api/analytics")
	{
		analytics.GET("/status", s.statusDistribution)
		analytics.GET("/sectors", s.sectorDistribution)
		analytics.GET("/regions", s.regionDistribution)
		analytics.GET("/rejections", s.rejectionReasons)
		analytics.GET("/monthly", s.monthlyCounts)
		analytics.GET("/organizations", s.amountByOrganization)
		analytics.GET("/owners", s.ownerPerformance)
	}

	router.POST("/api/extract", s.extract)
	router.GET("/api/extractions", s.recentExtractions)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
