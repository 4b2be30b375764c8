package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// maxBackupBytes bounds the restore upload.
const maxBackupBytes = 64 << 20

// BackupHandler exports and restores the whole dataset.
type BackupHandler struct {
	backupService services.BackupService
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(bs services.BackupService) *BackupHandler {
	return &BackupHandler{backupService: bs}
}

// Export streams every collection as one JSON document.
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backupService.Export()
	if err != nil {
		utils.LogError(err, "Export: Error from backupService.Export")
		utils.RespondInternalError(c, "Failed to export backup.")
		return
	}
	filename := fmt.Sprintf("salon-backup-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, doc)
}

// Restore replaces all collections with the uploaded document.
func (h *BackupHandler) Restore(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupBytes)
	raw, err := c.GetRawData()
	if err != nil {
		utils.LogError(err, "Restore: Failed to read body")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Could not read backup document.", err.Error()))
		return
	}

	result, err := h.backupService.Restore(raw)
	if err != nil {
		utils.LogError(err, "Restore: Error from backupService.Restore")
		if errors.Is(err, services.ErrInvalidBackup) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to restore backup.")
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
