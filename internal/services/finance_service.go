package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/metrics"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionValidation = errors.New("financial transaction validation error")
	ErrInvalidDateRange      = errors.New("invalid date range")
)

// CreateTransactionRequest is a manual cash-flow entry made by staff.
type CreateTransactionRequest struct {
	Description   string  `json:"description" binding:"required"`
	Amount        string  `json:"amount" binding:"required"` // "120,00" or "120.00"
	Date          *string `json:"date"`                      // YYYY-MM-DD, defaults to today
	Category      string  `json:"category" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	PaymentMethod *string `json:"payment_method"`
}

// FinanceService exposes the append-only cash-flow ledger.
type FinanceService interface {
	CreateTransaction(req CreateTransactionRequest) (*models.FinancialTransaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.FinancialTransaction, int, error)
	GetSummary(from, to *time.Time) (*models.CashFlowSummary, error)
}

type financeService struct {
	financeRepo repositories.FinanceRepository
	db          *sql.DB
	cfg         *config.Config
}

// NewFinanceService creates a new instance of FinanceService.
func NewFinanceService(repo repositories.FinanceRepository, db *sql.DB, cfg *config.Config) FinanceService {
	return &financeService{financeRepo: repo, db: db, cfg: cfg}
}

func (s *financeService) CreateTransaction(req CreateTransactionRequest) (*models.FinancialTransaction, error) {
	if strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: description and category are required", ErrTransactionValidation)
	}
	if !models.IsValidTransactionType(req.Type) {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrTransactionValidation)
	}
	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionValidation, err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrTransactionValidation)
	}
	date := s.cfg.Today()
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		date, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(*req.Date), s.cfg.Location)
		if err != nil {
			return nil, ErrDateFormat
		}
	}

	entry := &models.FinancialTransaction{
		Description:   strings.TrimSpace(req.Description),
		Amount:        amount,
		Date:          date,
		Category:      strings.TrimSpace(req.Category),
		Type:          models.TransactionType(req.Type),
		PaymentMethod: req.PaymentMethod,
	}
	if err := recordTransaction(s.db, s.financeRepo, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *financeService) GetTransactions(filters models.TransactionFilters) ([]models.FinancialTransaction, int, error) {
	if filters.Type != nil && !models.IsValidTransactionType(*filters.Type) {
		return nil, 0, fmt.Errorf("%w: type must be income or expense", ErrTransactionValidation)
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, 0, ErrInvalidDateRange
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 50
	}
	txs, total, err := s.financeRepo.GetTransactions(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get financial transactions: %w", err)
	}
	return txs, total, nil
}

// GetSummary totals the ledger; the range defaults to the current month.
func (s *financeService) GetSummary(from, to *time.Time) (*models.CashFlowSummary, error) {
	today := s.cfg.Today()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	end := start.AddDate(0, 1, -1)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	totals, err := s.financeRepo.SumByCategory(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise cash flow: %w", err)
	}
	return buildSummary(start, end, totals), nil
}

func buildSummary(start, end time.Time, totals []models.CategoryTotal) *models.CashFlowSummary {
	summary := &models.CashFlowSummary{
		DateFrom:   start,
		DateTo:     end,
		Income:     decimal.Zero,
		Expense:    decimal.Zero,
		ByCategory: totals,
	}
	for _, t := range totals {
		switch t.Type {
		case models.TransactionIncome:
			summary.Income = summary.Income.Add(t.Total)
		case models.TransactionExpense:
			summary.Expense = summary.Expense.Add(t.Total)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary
}

// recordTransaction appends one ledger entry through executor, usually the
// transaction of the event that caused it.
func recordTransaction(executor repositories.SQLExecutor, repo repositories.FinanceRepository, entry *models.FinancialTransaction) error {
	entry.Amount = entry.Amount.Round(2)
	if err := repo.CreateTransaction(executor, entry); err != nil {
		return fmt.Errorf("failed to record %s %q: %w", entry.Type, entry.Category, err)
	}
	metrics.RecordTransaction(string(entry.Type), entry.Category, entry.Amount)
	utils.LogInfo("Financial transaction recorded", map[string]interface{}{
		"type":     entry.Type,
		"category": entry.Category,
		"amount":   entry.Amount.StringFixed(2),
	})
	return nil
}
