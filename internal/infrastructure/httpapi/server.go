package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"NewsBridge/internal/ports"
	"NewsBridge/internal/usecase"
)

// Server exposes the ingestion and admin HTTP endpoints.
type Server struct {
	articles     ports.ArticleRepository
	ingestor     *usecase.Ingestor
	processor    *usecase.Processor
	orchestrator *usecase.Orchestrator
	scraper      *usecase.ScrapeRunner
	logger       *slog.Logger

	httpServer *http.Server
}

// Deps wires the server's collaborators.
type Deps struct {
	Articles     ports.ArticleRepository
	Ingestor     *usecase.Ingestor
	Processor    *usecase.Processor
	Orchestrator *usecase.Orchestrator
	Scraper      *usecase.ScrapeRunner
	Logger       *slog.Logger
}

func NewServer(deps Deps) *Server {
	return &Server{
		articles:     deps.Articles,
		ingestor:     deps.Ingestor,
		processor:    deps.Processor,
		orchestrator: deps.Orchestrator,
		scraper:      deps.Scraper,
		logger:       deps.Logger.With("component", "httpapi"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog())

	router.GET("/health", s.handleHealth)
	router.POST("/api/scraper", s.handleIngest)

	admin := router.Group("/api/admin")
	admin.GET("/scraped-articles", s.handleList)
	admin.POST("/scraped-articles/process", s.handleProcess)
	admin.POST("/scraper/process-all", s.handleProcessAll)
	admin.GET("/scraper/process-all", s.handleBatchStatus)
	admin.POST("/scraper/run", s.handleScrape)

	return router
}

// Run starts the listener and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLog() gin.HandlerFunc {
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
