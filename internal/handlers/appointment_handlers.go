package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"salon_backend/internal/models"
	"salon_backend/internal/scheduling"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler holds the appointment service.
type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: as}
}

// CreateAppointment books a single appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req services.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateAppointment: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.appointmentService.CreateAppointment(req)
	if err != nil {
		utils.LogError(err, "CreateAppointment: Error from appointmentService.CreateAppointment")
		respondAppointmentError(c, err, "Failed to create appointment.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CreateRecurring books a weekly or biweekly series.
func (h *AppointmentHandler) CreateRecurring(c *gin.Context) {
	var req services.RecurringAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateRecurring: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.appointmentService.CreateRecurring(req)
	if err != nil {
		utils.LogError(err, "CreateRecurring: Error from appointmentService.CreateRecurring")
		respondAppointmentError(c, err, "Failed to create recurring appointments.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetAppointments handles fetching appointments with pagination and filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	var filters models.AppointmentFilters
	filters.Page, filters.PageSize = queryPage(c, 50)
	filters.ClientID = queryString(c, "client_id")
	filters.ProfessionalID = queryString(c, "professional_id")

	if status := queryString(c, "status"); status != nil {
		if !models.IsValidAppointmentStatus(*status) {
			utils.RespondValidationFailed(c, "Invalid status filter: "+*status)
			return
		}
		filters.Status = status
	}

	var err error
	if filters.DateFrom, err = queryDate(c, "date_from"); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if filters.DateTo, err = queryDate(c, "date_to"); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	appointments, totalCount, err := h.appointmentService.GetAppointments(filters)
	if err != nil {
		utils.LogError(err, "GetAppointments: Error from appointmentService.GetAppointments")
		utils.RespondInternalError(c, "Failed to fetch appointments.")
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      appointments,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id := c.Param("id")
	appointment, err := h.appointmentService.GetAppointmentByID(id)
	if err != nil {
		utils.LogError(err, "GetAppointmentByID: Error for ID "+id)
		respondAppointmentError(c, err, "Failed to fetch appointment.")
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment edits an appointment that is still open.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id := c.Param("id")
	var req services.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateAppointment: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.appointmentService.UpdateAppointment(id, req)
	if err != nil {
		utils.LogError(err, "UpdateAppointment: Error for ID "+id)
		respondAppointmentError(c, err, "Failed to update appointment.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChangeStatus moves an appointment along its lifecycle. Completion consumes
// package credits or awards a stamp and records the income.
func (h *AppointmentHandler) ChangeStatus(c *gin.Context) {
	id := c.Param("id")
	var req services.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ChangeStatus: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.appointmentService.ChangeStatus(id, req)
	if err != nil {
		utils.LogError(err, "ChangeStatus: Error for ID "+id)
		respondAppointmentError(c, err, "Failed to change appointment status.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteAppointment handles deleting an appointment.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")
	if err := h.appointmentService.DeleteAppointment(id); err != nil {
		utils.LogError(err, "DeleteAppointment: Error for ID "+id)
		respondAppointmentError(c, err, "Failed to delete appointment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

// FreeSlots lists the open start times of a professional on a date.
func (h *AppointmentHandler) FreeSlots(c *gin.Context) {
	professionalID := c.Query("professional_id")
	date := c.Query("date")
	if professionalID == "" || date == "" {
		utils.RespondValidationFailed(c, "professional_id and date are required")
		return
	}
	duration, err := strconv.Atoi(c.DefaultQuery("duration", "0"))
	if err != nil || duration < 0 {
		utils.RespondValidationFailed(c, "duration must be a non-negative number of minutes")
		return
	}

	slots, err := h.appointmentService.FreeSlots(professionalID, date, duration)
	if err != nil {
		utils.LogError(err, "FreeSlots: Error for professional "+professionalID+" on "+date)
		respondAppointmentError(c, err, "Failed to compute free slots.")
		return
	}
	if slots == nil {
		slots = []scheduling.TimeRange{}
	}
	c.JSON(http.StatusOK, gin.H{"professional_id": professionalID, "date": date, "slots": slots})
}

func respondAppointmentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAppointmentNotFound):
		utils.RespondNotFound(c, "Appointment not found.", err)
	case errors.Is(err, services.ErrProfessionalNotFound):
		utils.RespondNotFound(c, "Professional not found.", err)
	case errors.Is(err, services.ErrClientForAppointmentAbsent):
		utils.RespondNotFound(c, "Client specified for appointment not found.", err)
	case errors.Is(err, services.ErrProfessionalNotAvailable):
		utils.RespondConflict(c, "Professional is not available for the requested time.", err)
	case errors.Is(err, services.ErrInvalidStatusTransition):
		utils.RespondConflict(c, "Invalid appointment status transition.", err)
	case errors.Is(err, services.ErrAppointmentLocked):
		utils.RespondConflict(c, "Appointment can no longer be edited.", err)
	case errors.Is(err, services.ErrAppointmentValidation), errors.Is(err, services.ErrUnknownAppointmentService),
		errors.Is(err, services.ErrDateFormat), errors.Is(err, services.ErrInvalidDateRange), errors.Is(err, utils.ErrInvalidAmount):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
