package services

import (
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	totals := []models.CategoryTotal{
		{Category: models.CategoryPackageSale, Type: models.TransactionIncome, Total: decimal.RequireFromString("240.00")},
		{Category: models.CategoryServicesRendered, Type: models.TransactionIncome, Total: decimal.RequireFromString("310.50")},
		{Category: models.CategoryPackageRefund, Type: models.TransactionExpense, Total: decimal.RequireFromString("120.00")},
		{Category: "Aluguel", Type: models.TransactionExpense, Total: decimal.RequireFromString("500.25")},
	}

	summary := buildSummary(start, end, totals)

	assert.Equal(t, "550.50", summary.Income.StringFixed(2))
	assert.Equal(t, "620.25", summary.Expense.StringFixed(2))
	assert.Equal(t, "-69.75", summary.Balance.StringFixed(2))
	assert.Len(t, summary.ByCategory, 4)
}

func TestCreateTransaction(t *testing.T) {
	db, _ := newMockDB(t)
	repo := &fakeFinanceRepo{}
	svc := NewFinanceService(repo, db, testConfig())

	date := "2026-03-10"
	entry, err := svc.CreateTransaction(CreateTransactionRequest{
		Description: "Compra de esmaltes",
		Amount:      "R$ 89,90",
		Category:    "Materiais",
		Type:        "expense",
		Date:        &date,
	})
	require.NoError(t, err)
	assert.Equal(t, "89.90", entry.Amount.StringFixed(2))
	assert.Equal(t, models.TransactionExpense, entry.Type)
	assert.Equal(t, 10, entry.Date.Day())
	require.Len(t, repo.entries, 1)

	tests := []struct {
		name string
		req  CreateTransactionRequest
		want error
	}{
		{"missing category", CreateTransactionRequest{Description: "x", Amount: "1", Type: "income"}, ErrTransactionValidation},
		{"bad type", CreateTransactionRequest{Description: "x", Category: "y", Amount: "1", Type: "transfer"}, ErrTransactionValidation},
		{"zero amount", CreateTransactionRequest{Description: "x", Category: "y", Amount: "0,00", Type: "income"}, ErrTransactionValidation},
		{"bad date", CreateTransactionRequest{Description: "x", Category: "y", Amount: "1", Type: "income", Date: strPtr("10/03/2026")}, ErrDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, repo.entries, 1)
}

func TestGetSummaryRejectsInvertedRange(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewFinanceService(&fakeFinanceRepo{}, db, testConfig())

	from := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetSummary(&from, &to)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
