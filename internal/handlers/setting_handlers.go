package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler holds the application settings service.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

// GetApplicationSettings retrieves all application settings.
func (h *SettingHandler) GetApplicationSettings(c *gin.Context) {
	settings, err := h.settingService.GetAll()
	if err != nil {
		utils.LogError(err, "GetApplicationSettings: Error from settingService.GetAll")
		utils.RespondInternalError(c, "Failed to fetch application settings.")
		return
	}
	if settings == nil {
		settings = []models.ApplicationSetting{}
	}
	c.JSON(http.StatusOK, settings)
}

// GetApplicationSettingByKey retrieves a specific application setting by its key.
func (h *SettingHandler) GetApplicationSettingByKey(c *gin.Context) {
	key := c.Param("key")
	setting, err := h.settingService.GetByKey(key)
	if err != nil {
		utils.LogError(err, "GetApplicationSettingByKey: Error for key "+key)
		respondSettingError(c, err, "Failed to fetch application setting.")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpsertApplicationSetting creates or updates the setting in the path.
func (h *SettingHandler) UpsertApplicationSetting(c *gin.Context) {
	key := c.Param("key")
	var req services.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpsertApplicationSetting: Failed to bind JSON for key "+key)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	setting, err := h.settingService.Upsert(key, req)
	if err != nil {
		utils.LogError(err, "UpsertApplicationSetting: Error for key "+key)
		respondSettingError(c, err, "Failed to save application setting.")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// DeleteApplicationSettingByKey deletes an application setting by its key.
func (h *SettingHandler) DeleteApplicationSettingByKey(c *gin.Context) {
	key := c.Param("key")
	if err := h.settingService.Delete(key); err != nil {
		utils.LogError(err, "DeleteApplicationSettingByKey: Error for key "+key)
		respondSettingError(c, err, "Failed to delete application setting.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting deleted successfully"})
}

// GetSalonProfile returns the resolved salon profile with config fallbacks.
func (h *SettingHandler) GetSalonProfile(c *gin.Context) {
	profile, err := h.settingService.Profile()
	if err != nil {
		utils.LogError(err, "GetSalonProfile: Error from settingService.Profile")
		utils.RespondInternalError(c, "Failed to fetch salon profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func respondSettingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrSettingNotFound):
		utils.RespondNotFound(c, "Setting not found.", err)
	case errors.Is(err, services.ErrSettingValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
