package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PackageHandler holds the package service.
type PackageHandler struct {
	packageService services.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(ps services.PackageService) *PackageHandler {
	return &PackageHandler{packageService: ps}
}

// CreatePackage handles POST /packages. A missing client_id creates a
// reusable template instead of a client package.
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req services.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePackage: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	pkg, err := h.packageService.CreatePackage(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreatePackage: Error from packageService.CreatePackage")
		if errors.Is(err, services.ErrClientForPackageMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client for package not found.", err.Error()))
		} else if errors.Is(err, services.ErrPackageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondServiceError(c, err, "Failed to create package.")
		}
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// GetPackages handles GET /packages?clientId=N.
func (h *PackageHandler) GetPackages(c *gin.Context) {
	clientID, ok := queryInt64(c, "clientId")
	if !ok {
		return
	}
	if clientID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "clientId query parameter is required.", "missing clientId"))
		return
	}

	packages, err := h.packageService.GetPackagesByClient(*clientID)
	if err != nil {
		utils.LogError(err, "GetPackages: Error from packageService.GetPackagesByClient")
		if errors.Is(err, services.ErrClientForPackageMissing) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to fetch packages.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": packages})
}

// GetTemplates handles GET /packages/templates.
func (h *PackageHandler) GetTemplates(c *gin.Context) {
	templates, err := h.packageService.GetTemplates()
	if err != nil {
		utils.LogError(err, "GetTemplates: Error from packageService.GetTemplates")
		respondServiceError(c, err, "Failed to fetch package templates.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

// GetPackageByID handles GET /packages/:id.
func (h *PackageHandler) GetPackageByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pkg, err := h.packageService.GetPackageByID(id)
	if err != nil {
		utils.LogError(err, "GetPackageByID: Error from packageService.GetPackageByID")
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to fetch package.")
		}
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// UpdatePackage handles PATCH /packages/:id.
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePackage: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	pkg, err := h.packageService.UpdatePackage(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdatePackage: Error from packageService.UpdatePackage")
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrPackageValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondServiceError(c, err, "Failed to update package.")
		}
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// DeletePackage handles DELETE /packages/:id. Packages referenced by
// sessions are refused with 409.
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.packageService.DeletePackage(id, actorID(c)); err != nil {
		utils.LogError(err, "DeletePackage: Error from packageService.DeletePackage")
		if errors.Is(err, services.ErrPackageNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Package not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrPackageInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Package is referenced by existing sessions.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to delete package.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}
