package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of money in the cash-flow ledger.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// IsValidTransactionType checks the closed set of transaction types.
func IsValidTransactionType(t string) bool {
	return TransactionType(t) == TransactionIncome || TransactionType(t) == TransactionExpense
}

// Categories written automatically by the application.
const (
	CategoryPackageSale      = "Venda de Pacote"
	CategoryServicesRendered = "Serviços Prestados"
	CategoryPackageRefund    = "Estorno de Pacote"
)

// FinancialTransaction is an append-only ledger entry.
type FinancialTransaction struct {
	ID            string          `json:"id" db:"id"`
	Description   string          `json:"description" db:"description"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Date          time.Time       `json:"date" db:"date"`
	Category      string          `json:"category" db:"category"`
	Type          TransactionType `json:"type" db:"type"`
	PaymentMethod *string         `json:"payment_method,omitempty" db:"payment_method"`
	ReferenceID   *string         `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// TransactionFilters defines the available filters for the cash-flow listing.
type TransactionFilters struct {
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Type     *string    `form:"type"`
	Category *string    `form:"category"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// CategoryTotal aggregates one category and direction.
type CategoryTotal struct {
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
	Total    decimal.Decimal `json:"total"`
}

// CashFlowSummary totals the ledger over a date range.
type CashFlowSummary struct {
	DateFrom   time.Time       `json:"date_from"`
	DateTo     time.Time       `json:"date_to"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	ByCategory []CategoryTotal `json:"by_category"`
}
