package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/middleware"
	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses a path parameter as an int64 id. On failure it writes
// a 400 response and returns false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := utils.StrToInt64(raw)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", "expected a positive integer, got "+raw))
		return 0, false
	}
	return id, true
}

// actorID pulls the authenticated user id from the request context. Nil when
// the route is unauthenticated.
func actorID(c *gin.Context) *int64 {
	value, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return nil
	}
	id, ok := value.(int64)
	if !ok {
		return nil
	}
	return &id
}

// queryInt64 parses an optional int64 query parameter.
func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := utils.StrToInt64(raw)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" query parameter.", "expected an integer, got "+raw))
		return nil, false
	}
	return &id, true
}

// respondServiceError maps errors no handler-specific branch claimed. Every
// handler funnels its unmatched errors through here so the 503 for a missing
// database pool is uniform across the API.
func respondServiceError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrServiceUnavailable) {
		utils.RespondServiceUnavailable(c)
		return
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, message, "Internal error"))
}
