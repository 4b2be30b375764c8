package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
)

const professionalColumns = `id, name, phone, email, specialty, active, created_at, updated_at`

// ProfessionalRepository defines the interface for professional-related database operations.
type ProfessionalRepository interface {
	CreateProfessional(executor SQLExecutor, p *models.Professional) error
	GetProfessionalByID(id string) (*models.Professional, error)
	GetProfessionals(executor SQLExecutor, activeOnly bool) ([]models.Professional, error)
	UpdateProfessional(executor SQLExecutor, p *models.Professional) error
	DeleteProfessional(executor SQLExecutor, id string) error
}

type professionalRepository struct {
	db *sql.DB
}

// NewProfessionalRepository creates a new instance of ProfessionalRepository.
func NewProfessionalRepository(db *sql.DB) ProfessionalRepository {
	return &professionalRepository{db: db}
}

func scanProfessional(row scanner) (*models.Professional, error) {
	var p models.Professional
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.Specialty, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *professionalRepository) CreateProfessional(executor SQLExecutor, p *models.Professional) error {
	query := `INSERT INTO professionals (` + professionalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := executor.Exec(query, p.ID, p.Name, p.Phone, p.Email, p.Specialty, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return classify(err, "creating professional")
	}
	return nil
}

func (r *professionalRepository) GetProfessionalByID(id string) (*models.Professional, error) {
	p, err := scanProfessional(r.db.QueryRow(`SELECT `+professionalColumns+` FROM professionals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting professional %s: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *professionalRepository) GetProfessionals(executor SQLExecutor, activeOnly bool) ([]models.Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	rows, err := executor.Query(query + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying professionals: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.Professional{}
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning professional: %v", ErrDatabaseError, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating professional rows: %v", ErrDatabaseError, err)
	}
	return out, nil
}

func (r *professionalRepository) UpdateProfessional(executor SQLExecutor, p *models.Professional) error {
	query := `UPDATE professionals SET name = $1, phone = $2, email = $3, specialty = $4, active = $5, updated_at = $6 WHERE id = $7`
	p.UpdatedAt = time.Now()
	result, err := executor.Exec(query, p.Name, p.Phone, p.Email, p.Specialty, p.Active, p.UpdatedAt, p.ID)
	if err != nil {
		return classify(err, "updating professional "+p.ID)
	}
	return expectOneRow(result, "updating professional "+p.ID)
}

// DeleteProfessional fails with ErrReferenced while appointments point at the professional.
func (r *professionalRepository) DeleteProfessional(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM professionals WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting professional "+id)
	}
	return expectOneRow(result, "deleting professional "+id)
}
