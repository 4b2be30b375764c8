package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"salon_backend/internal/models"
)

// ReportRepository runs the aggregate queries behind the dashboard.
type ReportRepository interface {
	CountAppointmentsOn(date time.Time, status *models.AppointmentStatus) (int, error)
	// CountClientsWithMimos counts clients whose earned mimos exceed the redeemed ones.
	CountClientsWithMimos(stampsPerHeart, heartsPerMimo int) (int, error)
	CountActivePackages(today time.Time) (int, error)
	CountLowStockProducts() (int, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) count(action, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	return n, nil
}

func (r *reportRepository) CountAppointmentsOn(date time.Time, status *models.AppointmentStatus) (int, error) {
	if status != nil {
		return r.count("counting appointments", `SELECT COUNT(*) FROM appointments WHERE date = $1 AND status = $2`, date.Format(dateLayout), *status)
	}
	return r.count("counting appointments", `SELECT COUNT(*) FROM appointments WHERE date = $1 AND status <> $2`, date.Format(dateLayout), models.AppointmentStatusCancelled)
}

func (r *reportRepository) CountClientsWithMimos(stampsPerHeart, heartsPerMimo int) (int, error) {
	return r.count("counting clients with mimos",
		`SELECT COUNT(*) FROM clients WHERE (stamps_earned / $1) / $2 - mimos_redeemed > 0`,
		stampsPerHeart, heartsPerMimo)
}

// CountActivePackages counts Ativo package instances that have not expired.
func (r *reportRepository) CountActivePackages(today time.Time) (int, error) {
	query := `SELECT COUNT(*)
	          FROM clients c, jsonb_array_elements(c.purchased_packages) p
	          WHERE p->>'status' = $1
	            AND (p->>'expiry_date' IS NULL OR LEFT(p->>'expiry_date', 10)::date >= $2::date)`
	return r.count("counting active packages", query, string(models.PackageStatusActive), today.Format(dateLayout))
}

func (r *reportRepository) CountLowStockProducts() (int, error) {
	return r.count("counting low stock products",
		`SELECT COUNT(*) FROM products WHERE low_stock_threshold IS NOT NULL AND stock <= low_stock_threshold`)
}
