package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/middleware"
	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Register: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.authService.Register(req, actorID(c))
	if err != nil {
		utils.LogError(err, "Register: Error from authService.Register")
		if errors.Is(err, services.ErrUserDuplicate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username or email already taken.", err.Error()))
		} else if errors.Is(err, services.ErrAuthValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondServiceError(c, err, "Failed to register user.")
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Login: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	tokens, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", "credential check failed"))
		} else if errors.Is(err, services.ErrUserInactive) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User account is inactive.", err.Error()))
		} else {
			utils.LogError(err, "Login: Error from authService.Login")
			respondServiceError(c, err, "Failed to log in.")
		}
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Refresh: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	tokens, err := h.authService.Refresh(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired refresh token.", "token validation failed"))
		} else if errors.Is(err, services.ErrUserInactive) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User account is inactive.", err.Error()))
		} else {
			utils.LogError(err, "Refresh: Error from authService.Refresh")
			respondServiceError(c, err, "Failed to refresh tokens.")
		}
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Me handles GET /auth/me for the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	value, exists := c.Get(middleware.ContextUserID)
	userID, ok := value.(int64)
	if !exists || !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "no user id in context"))
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.LogError(err, "Me: Error from authService.GetUserByID")
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to fetch user.")
		}
		return
	}
	c.JSON(http.StatusOK, user)
}
