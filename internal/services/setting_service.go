package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/config"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/internal/scheduling"
)

var (
	ErrSettingNotFound   = errors.New("application setting not found")
	ErrSettingValidation = errors.New("application setting validation error")
)

type UpsertSettingRequest struct {
	SettingValue *string `json:"setting_value"`
	Description  *string `json:"description"`
}

// SalonProfile is the resolved view of the salon settings with config fallbacks.
type SalonProfile struct {
	SalonName           string `json:"salon_name"`
	OpeningTime         string `json:"opening_time"`
	ClosingTime         string `json:"closing_time"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
	Timezone            string `json:"timezone"`
}

// SettingService persists key-value settings.
type SettingService interface {
	GetAll() ([]models.ApplicationSetting, error)
	GetByKey(key string) (*models.ApplicationSetting, error)
	Upsert(key string, req UpsertSettingRequest) (*models.ApplicationSetting, error)
	Delete(key string) error
	Profile() (*SalonProfile, error)
}

type settingService struct {
	settingRepo repositories.SettingRepository
	db          *sql.DB
	cfg         *config.Config
}

// NewSettingService creates a new instance of SettingService.
func NewSettingService(repo repositories.SettingRepository, db *sql.DB, cfg *config.Config) SettingService {
	return &settingService{settingRepo: repo, db: db, cfg: cfg}
}

func (s *settingService) GetAll() ([]models.ApplicationSetting, error) {
	settings, err := s.settingRepo.GetAll(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch application settings: %w", err)
	}
	return settings, nil
}

func (s *settingService) GetByKey(key string) (*models.ApplicationSetting, error) {
	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to fetch application setting: %w", err)
	}
	return setting, nil
}

// Upsert validates the known keys; unknown keys are stored as given.
func (s *settingService) Upsert(key string, req UpsertSettingRequest) (*models.ApplicationSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrSettingValidation)
	}
	switch key {
	case models.SettingOpeningTime, models.SettingClosingTime:
		if req.SettingValue == nil {
			return nil, fmt.Errorf("%w: %s needs a value", ErrSettingValidation, key)
		}
		if _, err := scheduling.ParseClock(*req.SettingValue); err != nil {
			return nil, fmt.Errorf("%w: %s must be HH:MM", ErrSettingValidation, key)
		}
	}

	setting := &models.ApplicationSetting{SettingKey: key, SettingValue: req.SettingValue, Description: req.Description}
	if err := s.settingRepo.Upsert(s.db, setting); err != nil {
		return nil, fmt.Errorf("failed to save application setting: %w", err)
	}
	return setting, nil
}

func (s *settingService) Delete(key string) error {
	if err := s.settingRepo.Delete(s.db, key); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to delete application setting: %w", err)
	}
	return nil
}

func (s *settingService) Profile() (*SalonProfile, error) {
	profile := &SalonProfile{
		SalonName:           "Salão",
		OpeningTime:         s.cfg.Schedule.OpeningTime,
		ClosingTime:         s.cfg.Schedule.ClosingTime,
		SlotIntervalMinutes: s.cfg.Schedule.SlotIntervalMinutes,
		Timezone:            s.cfg.Location.String(),
	}
	settings, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	for _, st := range settings {
		if st.SettingValue == nil || strings.TrimSpace(*st.SettingValue) == "" {
			continue
		}
		switch st.SettingKey {
		case models.SettingSalonName:
			profile.SalonName = *st.SettingValue
		case models.SettingOpeningTime:
			profile.OpeningTime = *st.SettingValue
		case models.SettingClosingTime:
			profile.ClosingTime = *st.SettingValue
		}
	}
	return profile, nil
}
