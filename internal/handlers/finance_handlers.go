package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// FinanceHandler serves the cash-flow ledger.
type FinanceHandler struct {
	financeService services.FinanceService
}

// NewFinanceHandler creates a new FinanceHandler.
func NewFinanceHandler(fs services.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: fs}
}

// CreateTransaction records a manual income or expense entry.
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req services.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTransaction: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tx, err := h.financeService.CreateTransaction(req)
	if err != nil {
		utils.LogError(err, "CreateTransaction: Error from financeService.CreateTransaction")
		if errors.Is(err, services.ErrTransactionValidation) || errors.Is(err, services.ErrDateFormat) || errors.Is(err, utils.ErrInvalidAmount) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to record transaction.")
		}
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// GetTransactions lists ledger entries by date range, type and category.
func (h *FinanceHandler) GetTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	filters.Page, filters.PageSize = queryPage(c, 50)
	filters.Category = queryString(c, "category")

	if txType := queryString(c, "type"); txType != nil {
		if !models.IsValidTransactionType(*txType) {
			utils.RespondValidationFailed(c, "type must be income or expense")
			return
		}
		filters.Type = txType
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

	list, totalCount, err := h.financeService.GetTransactions(filters)
	if err != nil {
		utils.LogError(err, "GetTransactions: Error from financeService.GetTransactions")
		if errors.Is(err, services.ErrInvalidDateRange) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to fetch transactions.")
		}
		return
	}
	if list == nil {
		list = []models.FinancialTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      list,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetSummary returns income, expense and balance for a period.
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	from, err := queryDate(c, "date_from")
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	summary, err := h.financeService.GetSummary(from, to)
	if err != nil {
		utils.LogError(err, "GetSummary: Error from financeService.GetSummary")
		if errors.Is(err, services.ErrInvalidDateRange) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to compute cash-flow summary.")
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}
