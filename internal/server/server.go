// Package server exposes the ingestion and generation pipeline over HTTP.
//
// Authentication is an external collaborator: the identity middleware in
// front of this service resolves the session and forwards the owning user
// in the X-User-Id header. Handlers here only refuse requests that arrive
// without one.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caseflow/casepipe/internal/artifact"
	"github.com/caseflow/casepipe/internal/cache"
	"github.com/caseflow/casepipe/internal/common"
	"github.com/caseflow/casepipe/internal/ingest"
	"github.com/caseflow/casepipe/internal/repository"
)

const userIDHeader = "X-User-Id"

type Server struct {
	coordinator *ingest.Coordinator
	generator   *artifact.Generator
	documents   repository.DocumentRepository
	docCache    *cache.DocumentCache
	logger      *slog.Logger
}

func New(coordinator *ingest.Coordinator, generator *artifact.Generator, documents repository.DocumentRepository, docCache *cache.DocumentCache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		coordinator: coordinator,
		generator:   generator,
		documents:   documents,
		docCache:    docCache,
		logger:      logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/files/upload", s.handleUpload)
		api.POST("/files/upload-token", s.handleUploadToken)
		api.POST("/files/process", s.handleProcess)
		api.POST("/artifacts/generate", s.handleGenerate)
		api.GET("/document", s.handleGetDocument)
	}
	return r
}

// userID pulls the resolved identity injected by the auth layer.
func userID(c *gin.Context) string {
	return c.GetHeader(userIDHeader)
}

// writeError maps the failure classes onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrConfig):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
