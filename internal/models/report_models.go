package models

import "github.com/shopspring/decimal"

// DashboardSummary holds key metrics for the front desk dashboard.
type DashboardSummary struct {
	AppointmentsToday     int             `json:"appointments_today"`
	CompletedToday        int             `json:"completed_today"`
	IncomeThisMonth       decimal.Decimal `json:"income_this_month"`
	ExpenseThisMonth      decimal.Decimal `json:"expense_this_month"`
	ClientsWithMimos      int             `json:"clients_with_mimos_available"`
	ActivePackages        int             `json:"active_packages"`
	LowStockProductsCount int             `json:"low_stock_products_count"`
}
