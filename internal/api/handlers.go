package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propval/server/internal/database"
	"propval/server/internal/models"
	"propval/server/internal/valuation"
)

type Handler struct {
	db           *database.Database
	orchestrator *valuation.Orchestrator
	logger       *logrus.Logger
	maxHistory   int
}

// ValuationRequest is the subject-property payload accepted by the valuation
// endpoint. It mirrors the snapshot held by the external property store.
type ValuationRequest struct {
	models.Property
}

func NewHandler(db *database.Database, orchestrator *valuation.Orchestrator, maxHistory int, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:           db,
		orchestrator: orchestrator,
		logger:       logger,
		maxHistory:   maxHistory,
	}
}

// EvaluateProperty runs a valuation for the posted subject property and
// appends the outcome to the property's valuation history.
func (h *Handler) EvaluateProperty(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse valuation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property location is required"})
		return
	}

	result, err := h.orchestrator.Evaluate(c.Request.Context(), &req.Property)
	if err != nil {
		if errors.Is(err, valuation.ErrMissingSubject) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Valuation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Valuation failed"})
		return
	}

	entry := h.orchestrator.HistoryEntry(&req.Property, result)
	if req.ID != "" {
		if err := h.db.AppendValuation(entry, h.maxHistory); err != nil {
			// History is an audit trail; losing one entry should not fail
			// the valuation response.
			h.logger.WithError(err).Error("Failed to persist valuation history")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"estimated_value":    result.EstimatedValue,
		"value_low":          result.ValueLow,
		"value_high":         result.ValueHigh,
		"confidence_scoring": result.Confidence,
		"comparables_data":   result.Comparables,
		"data_source":        result.DataSource,
		"valuation_entry":    entry,
	})
}

// GetValuationHistory returns the most recent valuation entries for a
// property, newest first.
func (h *Handler) GetValuationHistory(c *gin.Context) {
	propertyID := c.Param("property_id")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property ID is required"})
		return
	}

	entries, err := h.db.RecentValuations(propertyID, h.maxHistory)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get valuation history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get valuation history"})
		return
	}

	c.JSON(http.StatusOK, entries)
}
