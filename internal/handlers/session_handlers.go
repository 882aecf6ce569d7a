package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service.
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

func (h *SessionHandler) respondSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", err.Error()))
	case errors.Is(err, services.ErrDogForSessionMissing):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Dog for session not found.", err.Error()))
	case errors.Is(err, services.ErrPackageForSessionMissing):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package for session not found.", err.Error()))
	case errors.Is(err, services.ErrNoCreditsRemaining):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Linked package has no credits remaining.", err.Error()))
	case errors.Is(err, services.ErrInvalidSessionStatus), errors.Is(err, services.ErrSessionValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		respondServiceError(c, err, fallback)
	}
}

// CreateSession handles POST /sessions. A session created directly in the
// done state deducts its package credit immediately.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateSession: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	session, err := h.sessionService.CreateSession(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreateSession: Error from sessionService.CreateSession")
		h.respondSessionError(c, err, "Failed to create session.")
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSessions handles GET /sessions with dogId/packageId/status/from/to
// filters. from and to are RFC 3339 timestamps.
func (h *SessionHandler) GetSessions(c *gin.Context) {
	var filters repositories.SessionFilters
	var ok bool
	if filters.DogID, ok = queryInt64(c, "dogId"); !ok {
		return
	}
	if filters.PackageID, ok = queryInt64(c, "packageId"); !ok {
		return
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	for name, dest := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" query parameter.", "expected an RFC 3339 timestamp"))
			return
		}
		*dest = &parsed
	}

	sessions, err := h.sessionService.GetSessions(filters)
	if err != nil {
		utils.LogError(err, "GetSessions: Error from sessionService.GetSessions")
		h.respondSessionError(c, err, "Failed to fetch sessions.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions})
}

// GetSessionByID handles GET /sessions/:id.
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSessionByID(id)
	if err != nil {
		utils.LogError(err, "GetSessionByID: Error from sessionService.GetSessionByID")
		h.respondSessionError(c, err, "Failed to fetch session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession handles PATCH /sessions/:id. Status transitions into and
// out of done move the linked package credit exactly once.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSession: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	session, err := h.sessionService.UpdateSession(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdateSession: Error from sessionService.UpdateSession")
		h.respondSessionError(c, err, "Failed to update session.")
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession handles DELETE /sessions/:id, refunding a deducted credit.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(id, actorID(c)); err != nil {
		utils.LogError(err, "DeleteSession: Error from sessionService.DeleteSession")
		h.respondSessionError(c, err, "Failed to delete session.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}
