package handlers

import (
	"net/http"
	"strconv"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuditHandler holds the audit recorder's read side.
type AuditHandler struct {
	audit services.AuditRecorder
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit services.AuditRecorder) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// GetEntries handles GET /audit with pagination and an optional
// entity_type filter.
func (h *AuditHandler) GetEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	var entityType *string
	if raw := c.Query("entity_type"); raw != "" {
		entityType = &raw
	}

	entries, total, err := h.audit.GetEntries(page, pageSize, entityType)
	if err != nil {
		utils.LogError(err, "GetEntries: Error from audit.GetEntries")
		respondServiceError(c, err, "Failed to fetch audit entries.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
