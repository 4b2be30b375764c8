package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"
)

// SettingRepository persists key-value application settings.
type SettingRepository interface {
	GetAll(executor SQLExecutor) ([]models.ApplicationSetting, error)
	GetByKey(key string) (*models.ApplicationSetting, error)
	Upsert(executor SQLExecutor, setting *models.ApplicationSetting) error
	Delete(executor SQLExecutor, key string) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetAll(executor SQLExecutor) ([]models.ApplicationSetting, error) {
	rows, err := executor.Query("SELECT setting_key, setting_value, description, created_at, updated_at FROM application_settings ORDER BY setting_key")
	if err != nil {
		return nil, fmt.Errorf("%w: fetching application settings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	settings := []models.ApplicationSetting{}
	for rows.Next() {
		var s models.ApplicationSetting
		if err := rows.Scan(&s.SettingKey, &s.SettingValue, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning application setting: %v", ErrDatabaseError, err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating application settings: %v", ErrDatabaseError, err)
	}
	return settings, nil
}

func (r *settingRepository) GetByKey(key string) (*models.ApplicationSetting, error) {
	var s models.ApplicationSetting
	query := "SELECT setting_key, setting_value, description, created_at, updated_at FROM application_settings WHERE setting_key = $1"
	err := r.db.QueryRow(query, key).Scan(&s.SettingKey, &s.SettingValue, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching application setting %s: %v", ErrDatabaseError, key, err)
	}
	return &s, nil
}

// Upsert creates the setting or updates its value and description by key.
func (r *settingRepository) Upsert(executor SQLExecutor, s *models.ApplicationSetting) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	query := `INSERT INTO application_settings (setting_key, setting_value, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (setting_key) DO UPDATE
	          SET setting_value = EXCLUDED.setting_value, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
	          RETURNING created_at`
	if err := executor.QueryRow(query, s.SettingKey, s.SettingValue, s.Description, s.CreatedAt, s.UpdatedAt).Scan(&s.CreatedAt); err != nil {
		return classify(err, "saving application setting "+s.SettingKey)
	}
	return nil
}

func (r *settingRepository) Delete(executor SQLExecutor, key string) error {
	result, err := executor.Exec("DELETE FROM application_settings WHERE setting_key = $1", key)
	if err != nil {
		return classify(err, "deleting application setting "+key)
	}
	return expectOneRow(result, "deleting application setting "+key)
}
