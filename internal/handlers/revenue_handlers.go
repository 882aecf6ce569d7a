package handlers

import (
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RevenueHandler holds the revenue service.
type RevenueHandler struct {
	revenueService services.RevenueService
}

// NewRevenueHandler creates a new RevenueHandler.
func NewRevenueHandler(rs services.RevenueService) *RevenueHandler {
	return &RevenueHandler{revenueService: rs}
}

// GetSummary handles GET /revenue/summary.
func (h *RevenueHandler) GetSummary(c *gin.Context) {
	summary, err := h.revenueService.GetSummary()
	if err != nil {
		utils.LogError(err, "GetSummary: Error from revenueService.GetSummary")
		respondServiceError(c, err, "Failed to build revenue summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetByPeriod handles GET /revenue/by-period.
func (h *RevenueHandler) GetByPeriod(c *gin.Context) {
	series, err := h.revenueService.GetByPeriod()
	if err != nil {
		utils.LogError(err, "GetByPeriod: Error from revenueService.GetByPeriod")
		respondServiceError(c, err, "Failed to build revenue series.")
		return
	}
	c.JSON(http.StatusOK, series)
}
