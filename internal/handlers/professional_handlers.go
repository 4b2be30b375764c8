package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProfessionalHandler holds the professional service.
type ProfessionalHandler struct {
	professionalService services.ProfessionalService
}

// NewProfessionalHandler creates a new ProfessionalHandler.
func NewProfessionalHandler(ps services.ProfessionalService) *ProfessionalHandler {
	return &ProfessionalHandler{professionalService: ps}
}

// CreateProfessional handles the creation of a new professional.
func (h *ProfessionalHandler) CreateProfessional(c *gin.Context) {
	var req services.ProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateProfessional: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	professional, err := h.professionalService.CreateProfessional(req)
	if err != nil {
		utils.LogError(err, "CreateProfessional: Error from professionalService.CreateProfessional")
		respondProfessionalError(c, err, "Failed to create professional.")
		return
	}
	c.JSON(http.StatusCreated, professional)
}

// GetProfessionals lists professionals, optionally only the active ones.
func (h *ProfessionalHandler) GetProfessionals(c *gin.Context) {
	list, err := h.professionalService.GetProfessionals(queryBool(c, "active_only", false))
	if err != nil {
		utils.LogError(err, "GetProfessionals: Error from professionalService.GetProfessionals")
		utils.RespondInternalError(c, "Failed to fetch professionals.")
		return
	}
	if list == nil {
		list = []models.Professional{}
	}
	c.JSON(http.StatusOK, list)
}

// GetProfessionalByID handles fetching a single professional.
func (h *ProfessionalHandler) GetProfessionalByID(c *gin.Context) {
	id := c.Param("id")
	professional, err := h.professionalService.GetProfessionalByID(id)
	if err != nil {
		utils.LogError(err, "GetProfessionalByID: Error for ID "+id)
		respondProfessionalError(c, err, "Failed to fetch professional.")
		return
	}
	c.JSON(http.StatusOK, professional)
}

// UpdateProfessional handles updating a professional.
func (h *ProfessionalHandler) UpdateProfessional(c *gin.Context) {
	id := c.Param("id")
	var req services.ProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateProfessional: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	professional, err := h.professionalService.UpdateProfessional(id, req)
	if err != nil {
		utils.LogError(err, "UpdateProfessional: Error for ID "+id)
		respondProfessionalError(c, err, "Failed to update professional.")
		return
	}
	c.JSON(http.StatusOK, professional)
}

// DeleteProfessional handles deleting a professional without appointments.
func (h *ProfessionalHandler) DeleteProfessional(c *gin.Context) {
	id := c.Param("id")
	if err := h.professionalService.DeleteProfessional(id); err != nil {
		utils.LogError(err, "DeleteProfessional: Error for ID "+id)
		respondProfessionalError(c, err, "Failed to delete professional.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professional deleted successfully"})
}

func respondProfessionalError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrProfessionalNotFound):
		utils.RespondNotFound(c, "Professional not found.", err)
	case errors.Is(err, services.ErrProfessionalInUse):
		utils.RespondConflict(c, "Professional cannot be deleted as they have appointments.", err)
	case errors.Is(err, services.ErrProfessionalValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
