package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookielens/backend/internal/domain"
	"github.com/cookielens/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	detector *usecase.DetectorService
	analysis *usecase.AnalysisService
}

// NewHandler creates a new HTTP handler
func NewHandler(detector *usecase.DetectorService, analysis *usecase.AnalysisService) *Handler {
	return &Handler{
		detector: detector,
		analysis: analysis,
	}
}

// ScoreRequest is the body of POST /api/v1/policy/score
type ScoreRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalyzeRequest is the body of POST /api/v1/policy/analyze
type AnalyzeRequest struct {
	Domain    string `json:"domain" binding:"required"`
	PolicyURL string `json:"policyUrl" binding:"required,url"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            "cookielens-backend",
		"version":            "1.0.0",
		"pendingSubmissions": h.detector.PendingSubmissions(),
	})
}

// DetectBanners accepts a page snapshot and returns the consent banners
// found in it. Accepted banners are also forwarded to the collection
// endpoint asynchronously.
func (h *Handler) DetectBanners(c *gin.Context) {
	var snapshot domain.PageSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot: " + err.Error()})
		return
	}

	banners, err := h.detector.ProcessSnapshot(c.Request.Context(), &snapshot)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSnapshot) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     snapshot.URL,
		"count":   len(banners),
		"banners": banners,
	})
}

// ScorePolicy scores policy text supplied in the request body.
func (h *Handler) ScorePolicy(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := h.analysis.ScoreText(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzePolicy fetches a policy page by URL, scores it and returns the
// analysis. Repeated requests for the same domain are served from cache.
func (h *Handler) AnalyzePolicy(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain and policyUrl are required"})
		return
	}

	analysis, err := h.analysis.AnalyzePolicy(c.Request.Context(), req.Domain, req.PolicyURL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "domain and policyUrl are required"})
		case errors.Is(err, domain.ErrPolicyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "policy page not found"})
		case errors.Is(err, domain.ErrFetchFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch policy page"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "policy analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, analysis)
}
