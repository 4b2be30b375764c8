package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
)

var (
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrProfessionalValidation = errors.New("professional data validation error")
	ErrProfessionalInUse      = errors.New("professional cannot be deleted as they have appointments")
)

type ProfessionalRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Specialty *string `json:"specialty"`
	Active    *bool   `json:"active"`
}

// ProfessionalService manages the staff who perform services.
type ProfessionalService interface {
	CreateProfessional(req ProfessionalRequest) (*models.Professional, error)
	GetProfessionalByID(id string) (*models.Professional, error)
	GetProfessionals(activeOnly bool) ([]models.Professional, error)
	UpdateProfessional(id string, req ProfessionalRequest) (*models.Professional, error)
	DeleteProfessional(id string) error
}

type professionalService struct {
	professionalRepo repositories.ProfessionalRepository
	db               *sql.DB
}

// NewProfessionalService creates a new instance of ProfessionalService.
func NewProfessionalService(repo repositories.ProfessionalRepository, db *sql.DB) ProfessionalService {
	return &professionalService{professionalRepo: repo, db: db}
}

func applyProfessionalRequest(p *models.Professional, req ProfessionalRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrProfessionalValidation)
	}
	if req.Email != nil {
		if err := validateEmail(req.Email); err != nil {
			return fmt.Errorf("%w: email format is invalid", ErrProfessionalValidation)
		}
		p.Email = req.Email
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Specialty != nil {
		p.Specialty = req.Specialty
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	return nil
}

func (s *professionalService) CreateProfessional(req ProfessionalRequest) (*models.Professional, error) {
	p := &models.Professional{Active: true}
	if err := applyProfessionalRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.professionalRepo.CreateProfessional(s.db, p); err != nil {
		return nil, fmt.Errorf("failed to create professional: %w", err)
	}
	return p, nil
}

func (s *professionalService) GetProfessionalByID(id string) (*models.Professional, error) {
	p, err := s.professionalRepo.GetProfessionalByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return p, nil
}

func (s *professionalService) GetProfessionals(activeOnly bool) ([]models.Professional, error) {
	list, err := s.professionalRepo.GetProfessionals(s.db, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return list, nil
}

func (s *professionalService) UpdateProfessional(id string, req ProfessionalRequest) (*models.Professional, error) {
	p, err := s.GetProfessionalByID(id)
	if err != nil {
		return nil, err
	}
	if err := applyProfessionalRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.professionalRepo.UpdateProfessional(s.db, p); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("failed to update professional: %w", err)
	}
	return p, nil
}

// DeleteProfessional refuses while appointments still reference the professional;
// deactivate instead.
func (s *professionalService) DeleteProfessional(id string) error {
	if err := s.professionalRepo.DeleteProfessional(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProfessionalNotFound
		}
		if errors.Is(err, repositories.ErrReferenced) {
			return ErrProfessionalInUse
		}
		return fmt.Errorf("failed to delete professional: %w", err)
	}
	return nil
}
