package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tingbok/tingbok/internal/logger"
)

// Options configures the HTTP server.
type Options struct {
	// Version is reported by /health.
	Version string

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// Server is the HTTP surface.
type Server struct {
	ports  *Ports
	opts   Options
	engine *gin.Engine
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, opts Options) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors(), accessLog())

	s := &Server{ports: ports, opts: opts, engine: engine}
	s.registerRoutes()
	return s, nil
}

// registerRoutes wires every endpoint.
//
//	GET  /health
//	GET  /metrics
//	GET  /api/skos/concept?uri=&source=&languages=
//	GET  /api/skos/labels?uri=&source=&languages=
//	POST /api/skos/labels
//	GET  /api/skos/lookup?label=&lang=&source=&languages=
//	GET  /api/skos/hierarchy?uri=&source=&max_depth=
//	GET  /api/skos/hierarchy?label=&lang=&source=&max_depth=
//	GET  /api/skos/cache/stats
//	GET  /api/vocabulary
//	GET  /api/vocabulary/*id
//	GET  /api/ean/:ean
func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.opts.Metrics))
	}

	skos := s.engine.Group("/api/skos")
	skos.GET("/concept", s.handleConcept)
	skos.GET("/lookup", s.handleLookup)
	skos.GET("/labels", s.handleLabels)
	skos.POST("/labels", s.handleBatchLabels)
	skos.GET("/hierarchy", s.handleHierarchy)
	skos.GET("/cache/stats", s.handleCacheStats)

	// Vocabulary IDs contain slashes (food/vegetables).
	s.engine.GET("/api/vocabulary", s.handleVocabulary)
	s.engine.GET("/api/vocabulary/*id", s.handleVocabularyConcept)

	s.engine.GET("/api/ean/:ean", s.handleEAN)
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
