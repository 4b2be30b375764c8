package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	serviceColumns = `id, name, description, price, duration_minutes, active, created_at, updated_at`
	packageColumns = `id, name, description, price, validity_days, items, active, created_at, updated_at`
)

// CatalogRepository covers the service menu and the sellable packages.
type CatalogRepository interface {
	CreateService(executor SQLExecutor, svc *models.Service) error
	GetServiceByID(id string) (*models.Service, error)
	GetServicesByIDs(executor SQLExecutor, ids []string) ([]models.Service, error)
	GetServices(executor SQLExecutor, activeOnly bool) ([]models.Service, error)
	UpdateService(executor SQLExecutor, svc *models.Service) error
	DeleteService(executor SQLExecutor, id string) error

	CreatePackage(executor SQLExecutor, pkg *models.Package) error
	GetPackageByID(executor SQLExecutor, id string) (*models.Package, error)
	GetPackages(executor SQLExecutor, activeOnly bool) ([]models.Package, error)
	UpdatePackage(executor SQLExecutor, pkg *models.Package) error
	DeletePackage(executor SQLExecutor, id string) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func scanService(row scanner) (*models.Service, error) {
	var s models.Service
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanPackage(row scanner) (*models.Package, error) {
	var p models.Package
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ValidityDays, &p.Items, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Services ---

func (r *catalogRepository) CreateService(executor SQLExecutor, svc *models.Service) error {
	query := `INSERT INTO services (` + serviceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	if svc.UpdatedAt.IsZero() {
		svc.UpdatedAt = now
	}
	_, err := executor.Exec(query, svc.ID, svc.Name, svc.Description, svc.Price, svc.DurationMinutes, svc.Active, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return classify(err, "creating service")
	}
	return nil
}

func (r *catalogRepository) GetServiceByID(id string) (*models.Service, error) {
	svc, err := scanService(r.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting service %s: %v", ErrDatabaseError, id, err)
	}
	return svc, nil
}

// GetServicesByIDs returns the services found; missing ids are simply absent.
func (r *catalogRepository) GetServicesByIDs(executor SQLExecutor, ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return []models.Service{}, nil
	}
	return r.queryServices(executor, `SELECT `+serviceColumns+` FROM services WHERE id = ANY($1)`, pq.Array(ids))
}

func (r *catalogRepository) GetServices(executor SQLExecutor, activeOnly bool) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	return r.queryServices(executor, query+` ORDER BY name`)
}

func (r *catalogRepository) queryServices(executor SQLExecutor, query string, args ...interface{}) ([]models.Service, error) {
	rows, err := executor.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying services: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning service: %v", ErrDatabaseError, err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating service rows: %v", ErrDatabaseError, err)
	}
	return services, nil
}

func (r *catalogRepository) UpdateService(executor SQLExecutor, svc *models.Service) error {
	query := `UPDATE services SET name = $1, description = $2, price = $3, duration_minutes = $4, active = $5, updated_at = $6
	          WHERE id = $7`
	svc.UpdatedAt = time.Now()
	result, err := executor.Exec(query, svc.Name, svc.Description, svc.Price, svc.DurationMinutes, svc.Active, svc.UpdatedAt, svc.ID)
	if err != nil {
		return classify(err, "updating service "+svc.ID)
	}
	return expectOneRow(result, "updating service "+svc.ID)
}

func (r *catalogRepository) DeleteService(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting service "+id)
	}
	return expectOneRow(result, "deleting service "+id)
}

// --- Packages ---

func (r *catalogRepository) CreatePackage(executor SQLExecutor, pkg *models.Package) error {
	query := `INSERT INTO packages (` + packageColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now
	}
	if pkg.UpdatedAt.IsZero() {
		pkg.UpdatedAt = now
	}
	_, err := executor.Exec(query, pkg.ID, pkg.Name, pkg.Description, pkg.Price, pkg.ValidityDays, pkg.Items, pkg.Active, pkg.CreatedAt, pkg.UpdatedAt)
	if err != nil {
		return classify(err, "creating package")
	}
	return nil
}

func (r *catalogRepository) GetPackageByID(executor SQLExecutor, id string) (*models.Package, error) {
	pkg, err := scanPackage(executor.QueryRow(`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting package %s: %v", ErrDatabaseError, id, err)
	}
	return pkg, nil
}

func (r *catalogRepository) GetPackages(executor SQLExecutor, activeOnly bool) ([]models.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	rows, err := executor.Query(query + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying packages: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	packages := []models.Package{}
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning package: %v", ErrDatabaseError, err)
		}
		packages = append(packages, *pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating package rows: %v", ErrDatabaseError, err)
	}
	return packages, nil
}

func (r *catalogRepository) UpdatePackage(executor SQLExecutor, pkg *models.Package) error {
	query := `UPDATE packages SET name = $1, description = $2, price = $3, validity_days = $4, items = $5, active = $6, updated_at = $7
	          WHERE id = $8`
	pkg.UpdatedAt = time.Now()
	result, err := executor.Exec(query, pkg.Name, pkg.Description, pkg.Price, pkg.ValidityDays, pkg.Items, pkg.Active, pkg.UpdatedAt, pkg.ID)
	if err != nil {
		return classify(err, "updating package "+pkg.ID)
	}
	return expectOneRow(result, "updating package "+pkg.ID)
}

func (r *catalogRepository) DeletePackage(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting package "+id)
	}
	return expectOneRow(result, "deleting package "+id)
}
