package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DogHandler holds the dog service.
type DogHandler struct {
	dogService services.DogService
}

// NewDogHandler creates a new DogHandler.
func NewDogHandler(ds services.DogService) *DogHandler {
	return &DogHandler{dogService: ds}
}

func (h *DogHandler) respondDogError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrDogNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Dog not found.", err.Error()))
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrDogValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		respondServiceError(c, err, fallback)
	}
}

// CreateDog handles POST /dogs.
func (h *DogHandler) CreateDog(c *gin.Context) {
	var req services.CreateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateDog: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	dog, err := h.dogService.CreateDog(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreateDog: Error from dogService.CreateDog")
		h.respondDogError(c, err, "Failed to create dog.")
		return
	}
	c.JSON(http.StatusCreated, dog)
}

// GetDogs handles GET /dogs?clientId=N.
func (h *DogHandler) GetDogs(c *gin.Context) {
	clientID, ok := queryInt64(c, "clientId")
	if !ok {
		return
	}
	if clientID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "clientId query parameter is required.", "missing clientId"))
		return
	}

	dogs, err := h.dogService.GetDogsByClient(*clientID)
	if err != nil {
		utils.LogError(err, "GetDogs: Error from dogService.GetDogsByClient")
		h.respondDogError(c, err, "Failed to fetch dogs.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dogs})
}

// GetDogByID handles GET /dogs/:id.
func (h *DogHandler) GetDogByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	dog, err := h.dogService.GetDogByID(id)
	if err != nil {
		utils.LogError(err, "GetDogByID: Error from dogService.GetDogByID")
		h.respondDogError(c, err, "Failed to fetch dog.")
		return
	}
	c.JSON(http.StatusOK, dog)
}

// UpdateDog handles PATCH /dogs/:id.
func (h *DogHandler) UpdateDog(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateDog: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	dog, err := h.dogService.UpdateDog(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdateDog: Error from dogService.UpdateDog")
		h.respondDogError(c, err, "Failed to update dog.")
		return
	}
	c.JSON(http.StatusOK, dog)
}

// DeleteDog handles DELETE /dogs/:id.
func (h *DogHandler) DeleteDog(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.dogService.DeleteDog(id, actorID(c)); err != nil {
		utils.LogError(err, "DeleteDog: Error from dogService.DeleteDog")
		h.respondDogError(c, err, "Failed to delete dog.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dog deleted successfully"})
}
