package handlers

import (
	"net/http"

	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDashboardSummary returns today's agenda size, the month's cash flow and
// loyalty/package counters.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.Dashboard()
	if err != nil {
		utils.LogError(err, "GetDashboardSummary: Error from reportService.Dashboard")
		utils.RespondInternalError(c, "Failed to build dashboard summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}
