package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"NewsBridge/internal/domain"
	"NewsBridge/internal/ports"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleIngest accepts a batch of extracted articles and stores the new ones.
func (s *Server) handleIngest(c *gin.Context) {
	var items []domain.ExtractedArticle
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	stats, ids := s.ingestor.Ingest(c.Request.Context(), items)

	c.JSON(http.StatusOK, gin.H{
		"message":           "ingestion complete",
		"stats":             stats,
		"scrapedArticleIds": ids,
	})
}

type processRequest struct {
	ArticleID string `json:"articleId" binding:"required"`
}

// handleProcess runs the translation pipeline for a single article.
func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "articleId is required"})
		return
	}

	result, err := s.processor.Process(c.Request.Context(), req.ArticleID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "processing failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "article processed",
		"post": gin.H{
			"id":    result.PostID,
			"title": result.Title,
			"slug":  result.Slug,
		},
	})
}

// handleProcessAll starts a background batch over every pending article and
// returns immediately.
func (s *Server) handleProcessAll(c *gin.Context) {
	count, err := s.orchestrator.Trigger(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot start batch", "details": err.Error()})
		return
	}

	if count == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "no pending articles", "processing": 0})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "batch started", "processing": count})
}

// handleBatchStatus returns the most recent batch result snapshot.
func (s *Server) handleBatchStatus(c *gin.Context) {
	result, ok := s.orchestrator.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no batch has run yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleList returns a paginated page of scraped articles.
func (s *Server) handleList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := ports.ArticleFilter{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}

	articles, total, err := s.articles.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot list articles", "details": err.Error()})
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit

	c.JSON(http.StatusOK, gin.H{
		"articles": toArticleViews(articles),
		"pagination": gin.H{
			"page":       filter.Page,
			"limit":      filter.Limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

type scrapeRequest struct {
	Limit int `json:"limit"`
}

// handleScrape runs the scraper synchronously and reports ingestion stats.
func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	stats, ids := s.scraper.Run(c.Request.Context(), req.Limit)

	c.JSON(http.StatusOK, gin.H{
		"message":           "scrape complete",
		"stats":             stats,
		"scrapedArticleIds": ids,
	})
}

type articleView struct {
	ID           string   `json:"id"`
	SourceURL    string   `json:"sourceUrl"`
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	ProcessedAt  string   `json:"processedAt,omitempty"`
	PostID       string   `json:"postId,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	CreatedAt    string   `json:"createdAt"`
}

func toArticleViews(articles []domain.ScrapedArticle) []articleView {
	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		view := articleView{
			ID:           a.ID,
			SourceURL:    a.SourceURL,
			Source:       a.Source,
			Title:        a.Title,
			Description:  a.Description,
			Status:       string(a.Status),
			ErrorMessage: a.ErrorMessage,
			PostID:       a.PostID,
			Hashtags:     a.Hashtags,
			Keywords:     a.Keywords,
			CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if a.ProcessedAt != nil {
			view.ProcessedAt = a.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		views = append(views, view)
	}
	return views
}
