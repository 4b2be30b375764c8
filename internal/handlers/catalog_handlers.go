package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the service menu and the package catalog.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

// --- Services ---

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req services.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateService: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	svc, err := h.catalogService.CreateService(req)
	if err != nil {
		utils.LogError(err, "CreateService: Error from catalogService.CreateService")
		respondCatalogError(c, err, "Failed to create service.")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandler) GetServices(c *gin.Context) {
	list, err := h.catalogService.GetServices(queryBool(c, "active_only", false))
	if err != nil {
		utils.LogError(err, "GetServices: Error from catalogService.GetServices")
		utils.RespondInternalError(c, "Failed to fetch services.")
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetServiceByID(c *gin.Context) {
	id := c.Param("id")
	svc, err := h.catalogService.GetServiceByID(id)
	if err != nil {
		utils.LogError(err, "GetServiceByID: Error for ID "+id)
		respondCatalogError(c, err, "Failed to fetch service.")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) UpdateService(c *gin.Context) {
	id := c.Param("id")
	var req services.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateService: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	svc, err := h.catalogService.UpdateService(id, req)
	if err != nil {
		utils.LogError(err, "UpdateService: Error for ID "+id)
		respondCatalogError(c, err, "Failed to update service.")
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalogService.DeleteService(id); err != nil {
		utils.LogError(err, "DeleteService: Error for ID "+id)
		respondCatalogError(c, err, "Failed to delete service.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// --- Packages ---

func (h *CatalogHandler) CreatePackage(c *gin.Context) {
	var req services.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreatePackage: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	pkg, err := h.catalogService.CreatePackage(req)
	if err != nil {
		utils.LogError(err, "CreatePackage: Error from catalogService.CreatePackage")
		respondCatalogError(c, err, "Failed to create package.")
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *CatalogHandler) GetPackages(c *gin.Context) {
	list, err := h.catalogService.GetPackages(queryBool(c, "active_only", false))
	if err != nil {
		utils.LogError(err, "GetPackages: Error from catalogService.GetPackages")
		utils.RespondInternalError(c, "Failed to fetch packages.")
		return
	}
	if list == nil {
		list = []models.Package{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetPackageByID(c *gin.Context) {
	id := c.Param("id")
	pkg, err := h.catalogService.GetPackageByID(id)
	if err != nil {
		utils.LogError(err, "GetPackageByID: Error for ID "+id)
		respondCatalogError(c, err, "Failed to fetch package.")
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *CatalogHandler) UpdatePackage(c *gin.Context) {
	id := c.Param("id")
	var req services.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePackage: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	pkg, err := h.catalogService.UpdatePackage(id, req)
	if err != nil {
		utils.LogError(err, "UpdatePackage: Error for ID "+id)
		respondCatalogError(c, err, "Failed to update package.")
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *CatalogHandler) DeletePackage(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalogService.DeletePackage(id); err != nil {
		utils.LogError(err, "DeletePackage: Error for ID "+id)
		respondCatalogError(c, err, "Failed to delete package.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}

func respondCatalogError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrServiceNotFound):
		utils.RespondNotFound(c, "Service not found.", err)
	case errors.Is(err, services.ErrPackageNotFound):
		utils.RespondNotFound(c, "Package not found.", err)
	case errors.Is(err, services.ErrCatalogValidation), errors.Is(err, services.ErrUnknownServiceItem), errors.Is(err, utils.ErrInvalidAmount):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
