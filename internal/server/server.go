// Package server exposes the dispute engine over HTTP.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/model"
)

// DisputeService is the engine surface the HTTP handlers call.
type DisputeService interface {
	ClassifyBatch(ctx context.Context, items []model.LineItem) ([]model.ClassificationResult, error)
	ResolveCategory(items []model.LineItem) model.Category
	GenerateLetter(ctx context.Context, details model.AccountDetails, category model.Category, items []model.LineItem) (string, error)
	CheckCompliance(ctx context.Context, text string) model.ComplianceReport
}

// NamespaceLister reports the regulation namespaces in the index.
type NamespaceLister interface {
	ListNamespaces(ctx context.Context) ([]string, error)
}

// Config configures the HTTP boundary.
type Config struct {
	Addr         string
	LetterFormat letter.Format
	CORSOrigins  []string
	// TLS, when set, serves HTTPS with the given certificates.
	TLS *tls.Config
}

// Server is the HTTP front end of the engine.
type Server struct {
	service    DisputeService
	namespaces NamespaceLister
	logger     *slog.Logger
	router     *gin.Engine
	cfg        Config
}

// New builds the router. namespaces may be nil, which disables
// /api/namespaces.
func New(service DisputeService, namespaces NamespaceLister, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LetterFormat == "" {
		cfg.LetterFormat = letter.FormatMarkdown
	}

	s := &Server{
		service:    service,
		namespaces: namespaces,
		logger:     logger,
		cfg:        cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/categorize-accounts", s.categorizeAccounts)
		api.POST("/resolve-category", s.resolveCategory)
		api.POST("/generate-dispute", s.generateDispute)
		api.POST("/check-compliance", s.checkCompliance)
		api.GET("/namespaces", s.listNamespaces)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         s.cfg.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr, "tls", s.cfg.TLS != nil)
		if s.cfg.TLS != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
