package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// --- Custom Service Errors for the catalog ---
var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrPackageNotFound    = errors.New("package not found")
	ErrCatalogValidation  = errors.New("catalog data validation error")
	ErrUnknownServiceItem = errors.New("package references a service that does not exist")
)

// --- Catalog DTOs ---
type ServiceRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Price           *string `json:"price"` // "120,00" or "120.00"
	DurationMinutes *int    `json:"duration_minutes"`
	Active          *bool   `json:"active"`
}

type PackageRequest struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	Price        *string              `json:"price"`
	ValidityDays *int                 `json:"validity_days"`
	Items        []models.PackageItem `json:"items"`
	Active       *bool                `json:"active"`
}

// CatalogService manages the service menu and the package definitions sold
// to clients.
type CatalogService interface {
	CreateService(req ServiceRequest) (*models.Service, error)
	GetServiceByID(id string) (*models.Service, error)
	GetServices(activeOnly bool) ([]models.Service, error)
	UpdateService(id string, req ServiceRequest) (*models.Service, error)
	DeleteService(id string) error

	CreatePackage(req PackageRequest) (*models.Package, error)
	GetPackageByID(id string) (*models.Package, error)
	GetPackages(activeOnly bool) ([]models.Package, error)
	UpdatePackage(id string, req PackageRequest) (*models.Package, error)
	DeletePackage(id string) error
}

type catalogService struct {
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(repo repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{catalogRepo: repo, db: db}
}

func (s *catalogService) applyServiceRequest(svc *models.Service, req ServiceRequest) error {
	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if svc.Name == "" {
		return fmt.Errorf("%w: service name is required", ErrCatalogValidation)
	}
	if req.Description != nil {
		svc.Description = req.Description
	}
	if req.Price != nil {
		price, err := utils.ParseAmount(*req.Price)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCatalogValidation, err)
		}
		svc.Price = price
	}
	if svc.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if svc.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes must be positive", ErrCatalogValidation)
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	return nil
}

func (s *catalogService) CreateService(req ServiceRequest) (*models.Service, error) {
	svc := &models.Service{Active: true, DurationMinutes: 30}
	if err := s.applyServiceRequest(svc, req); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.CreateService(s.db, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *catalogService) GetServiceByID(id string) (*models.Service, error) {
	svc, err := s.catalogRepo.GetServiceByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func (s *catalogService) GetServices(activeOnly bool) ([]models.Service, error) {
	services, err := s.catalogRepo.GetServices(s.db, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *catalogService) UpdateService(id string, req ServiceRequest) (*models.Service, error) {
	svc, err := s.GetServiceByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyServiceRequest(svc, req); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateService(s.db, svc); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return svc, nil
}

func (s *catalogService) DeleteService(id string) error {
	if err := s.catalogRepo.DeleteService(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

func (s *catalogService) applyPackageRequest(pkg *models.Package, req PackageRequest) error {
	if req.Name != nil {
		pkg.Name = strings.TrimSpace(*req.Name)
	}
	if pkg.Name == "" {
		return fmt.Errorf("%w: package name is required", ErrCatalogValidation)
	}
	if req.Description != nil {
		pkg.Description = req.Description
	}
	if req.Price != nil {
		price, err := utils.ParseAmount(*req.Price)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCatalogValidation, err)
		}
		pkg.Price = price
	}
	if pkg.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
	}
	if req.ValidityDays != nil {
		pkg.ValidityDays = *req.ValidityDays
	}
	if pkg.ValidityDays < 0 {
		return fmt.Errorf("%w: validity_days cannot be negative", ErrCatalogValidation)
	}
	if req.Items != nil {
		pkg.Items = models.PackageItems(req.Items)
	}
	if req.Active != nil {
		pkg.Active = *req.Active
	}
	return s.validateItems(pkg.Items)
}

func (s *catalogService) validateItems(items models.PackageItems) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: a package needs at least one service", ErrCatalogValidation)
	}
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ServiceID == "" || item.Quantity <= 0 {
			return fmt.Errorf("%w: every item needs a service_id and a positive quantity", ErrCatalogValidation)
		}
		if seen[item.ServiceID] {
			return fmt.Errorf("%w: service %s listed twice", ErrCatalogValidation, item.ServiceID)
		}
		seen[item.ServiceID] = true
		ids = append(ids, item.ServiceID)
	}
	found, err := s.catalogRepo.GetServicesByIDs(s.db, ids)
	if err != nil {
		return fmt.Errorf("failed to check package services: %w", err)
	}
	if len(found) != len(ids) {
		return ErrUnknownServiceItem
	}
	return nil
}

func (s *catalogService) CreatePackage(req PackageRequest) (*models.Package, error) {
	pkg := &models.Package{Active: true}
	if err := s.applyPackageRequest(pkg, req); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.CreatePackage(s.db, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}
	return pkg, nil
}

func (s *catalogService) GetPackageByID(id string) (*models.Package, error) {
	pkg, err := s.catalogRepo.GetPackageByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return pkg, nil
}

func (s *catalogService) GetPackages(activeOnly bool) ([]models.Package, error) {
	pkgs, err := s.catalogRepo.GetPackages(s.db, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return pkgs, nil
}

// UpdatePackage changes the definition only; instances already sold keep the
// quantities and price they were sold with.
func (s *catalogService) UpdatePackage(id string, req PackageRequest) (*models.Package, error) {
	pkg, err := s.GetPackageByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyPackageRequest(pkg, req); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdatePackage(s.db, pkg); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to update package: %w", err)
	}
	return pkg, nil
}

func (s *catalogService) DeletePackage(id string) error {
	if err := s.catalogRepo.DeletePackage(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageNotFound
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}
	return nil
}
