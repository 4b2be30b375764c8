package services

import (
	"fmt"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/loyalty"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

// ReportService builds the front desk dashboard.
type ReportService interface {
	Dashboard() (*models.DashboardSummary, error)
}

type reportService struct {
	reportRepo  repositories.ReportRepository
	financeRepo repositories.FinanceRepository
	cfg         *config.Config
}

// NewReportService creates a new instance of ReportService.
func NewReportService(rr repositories.ReportRepository, fr repositories.FinanceRepository, cfg *config.Config) ReportService {
	return &reportService{reportRepo: rr, financeRepo: fr, cfg: cfg}
}

func (s *reportService) Dashboard() (*models.DashboardSummary, error) {
	today := s.cfg.Today()
	summary := &models.DashboardSummary{}
	var err error

	if summary.AppointmentsToday, err = s.reportRepo.CountAppointmentsOn(today, nil); err != nil {
		return nil, fmt.Errorf("failed to count today's appointments: %w", err)
	}
	completed := models.AppointmentStatusCompleted
	if summary.CompletedToday, err = s.reportRepo.CountAppointmentsOn(today, &completed); err != nil {
		return nil, fmt.Errorf("failed to count completed appointments: %w", err)
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	totals, err := s.financeRepo.SumByCategory(monthStart, monthStart.AddDate(0, 1, -1))
	if err != nil {
		return nil, fmt.Errorf("failed to summarise month cash flow: %w", err)
	}
	month := buildSummary(monthStart, monthStart.AddDate(0, 1, -1), totals)
	summary.IncomeThisMonth = month.Income
	summary.ExpenseThisMonth = month.Expense

	if summary.ClientsWithMimos, err = s.reportRepo.CountClientsWithMimos(loyalty.StampsPerHeart, loyalty.HeartsPerMimo); err != nil {
		return nil, fmt.Errorf("failed to count clients with mimos: %w", err)
	}
	if summary.ActivePackages, err = s.reportRepo.CountActivePackages(today); err != nil {
		return nil, fmt.Errorf("failed to count active packages: %w", err)
	}
	if summary.LowStockProductsCount, err = s.reportRepo.CountLowStockProducts(); err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}
	return summary, nil
}
