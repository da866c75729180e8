package handler

import (
	"net/http"
	"strings"

	"igire/backend/internal/config"
	"igire/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type predictionRequest struct {
	Issue       string   `json:"issue" binding:"required"`
	Category    string   `json:"category"`
	District    string   `json:"district"`
	Probability int      `json:"probability"`
	Timeframe   string   `json:"timeframe"`
	Evidence    []string `json:"evidence"`
}

func (h *Handler) ListPredictions(c *gin.Context) {
	predictions, err := h.Store.ListPredictions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, predictions)
}

// CreatePrediction stores a hand-written insight.
func (h *Handler) CreatePrediction(c *gin.Context) {
	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Issue) == "" {
		badRequest(c, "issue is required")
		return
	}
	if req.Probability < 0 || req.Probability > 100 {
		badRequest(c, "probability must be between 0 and 100")
		return
	}

	p := &models.Prediction{
		Issue:       strings.TrimSpace(req.Issue),
		Category:    models.ParseCategory(req.Category),
		District:    req.District,
		Probability: req.Probability,
		Timeframe:   req.Timeframe,
		Evidence:    pq.StringArray(req.Evidence),
	}
	if p.Timeframe == "" {
		p.Timeframe = config.InsightTimeframe
	}
	if p.Evidence == nil {
		p.Evidence = pq.StringArray{}
	}

	if err := h.Store.CreatePrediction(c.Request.Context(), p); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GeneratePredictions derives insights from recent complaint clusters.
func (h *Handler) GeneratePredictions(c *gin.Context) {
	predictions, err := h.Insights.Generate(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, predictions)
}

func (h *Handler) DeletePrediction(c *gin.Context) {
	if err := h.Store.DeletePrediction(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prediction deleted"})
}
