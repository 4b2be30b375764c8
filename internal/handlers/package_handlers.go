package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PackageHandler exposes the sale, listing and reversal of client packages.
type PackageHandler struct {
	packageService services.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(ps services.PackageService) *PackageHandler {
	return &PackageHandler{packageService: ps}
}

// SellPackage sells a catalog package to the client in the path.
func (h *PackageHandler) SellPackage(c *gin.Context) {
	clientID := c.Param("id")

	var req services.SellPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SellPackage: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.packageService.SellPackage(clientID, req)
	if err != nil {
		utils.LogError(err, "SellPackage: Error from packageService.SellPackage for client "+clientID)
		respondPackageError(c, err, "Failed to sell package.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetClientPackages lists every package instance the client ever bought.
func (h *PackageHandler) GetClientPackages(c *gin.Context) {
	clientID := c.Param("id")

	instances, err := h.packageService.GetClientPackages(clientID)
	if err != nil {
		utils.LogError(err, "GetClientPackages: Error for client "+clientID)
		respondPackageError(c, err, "Failed to fetch client packages.")
		return
	}
	if instances == nil {
		instances = models.PackageInstances{}
	}
	c.JSON(http.StatusOK, instances)
}

// DeletePackageInstance reverses a sale: refund expense and one stamp removed.
func (h *PackageHandler) DeletePackageInstance(c *gin.Context) {
	clientID := c.Param("id")
	instanceID := c.Param("instanceId")

	result, err := h.packageService.DeletePackageInstance(clientID, instanceID)
	if err != nil {
		utils.LogError(err, "DeletePackageInstance: Error for client "+clientID+" instance "+instanceID)
		respondPackageError(c, err, "Failed to delete package.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExpireOverdue runs the expiry sweep on demand.
func (h *PackageHandler) ExpireOverdue(c *gin.Context) {
	result, err := h.packageService.ExpireOverduePackages()
	if err != nil {
		utils.LogError(err, "ExpireOverdue: Error from packageService.ExpireOverduePackages")
		utils.RespondInternalError(c, "Failed to expire packages.")
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondPackageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondNotFound(c, "Client not found.", err)
	case errors.Is(err, services.ErrPackageNotFound):
		utils.RespondNotFound(c, "Package not found.", err)
	case errors.Is(err, services.ErrPackageInstanceNotFound):
		utils.RespondNotFound(c, "Package instance not found for this client.", err)
	case errors.Is(err, services.ErrPackageInactive):
		utils.RespondConflict(c, "Package is not available for sale.", err)
	case errors.Is(err, services.ErrSaleValidation), errors.Is(err, services.ErrDateFormat), errors.Is(err, utils.ErrInvalidAmount):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
