// Package server exposes the HTTP surface: search, click and liveness.
// The handlers carry no ranking logic.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"searchrank/models"
	"searchrank/pkg/db"
)

const maxQueryLength = 200

// Searcher is the pipeline surface the handlers call.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.RankedResult, error)
	Click(ctx context.Context, docID int64) (int64, error)
}

type Server struct {
	log      *slog.Logger
	pipeline Searcher
}

func New(log *slog.Logger, pipeline Searcher) *Server {
	return &Server{log: log, pipeline: pipeline}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)
	r.GET("/search", s.search)
	r.POST("/click", s.click)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// search always answers 200 with a (possibly empty) result list; only
// unexpected internal faults surface as 500.
func (s *Server) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" || len(query) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must be between 1 and 200 characters"})
		return
	}

	results, err := s.pipeline.Search(c.Request.Context(), query)
	if err != nil {
		s.log.Error("search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if results == nil {
		results = []models.RankedResult{}
	}
	c.JSON(http.StatusOK, results)
}

type clickRequest struct {
	DocID int64 `json:"doc_id" binding:"required"`
}

func (s *Server) click(c *gin.Context) {
	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	count, err := s.pipeline.Click(c.Request.Context(), req.DocID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if err != nil {
		s.log.Error("click failed", "doc_id", req.DocID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"doc_id":      req.DocID,
		"click_count": count,
	})
}
