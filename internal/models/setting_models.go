package models

import "time"

// Keys of the salon settings understood by the application.
const (
	SettingSalonName   = "salon_name"
	SettingOpeningTime = "opening_time"
	SettingClosingTime = "closing_time"
)

// ApplicationSetting represents a key-value pair for application configuration
type ApplicationSetting struct {
	SettingKey   string    `json:"setting_key" db:"setting_key" binding:"required"`
	SettingValue *string   `json:"setting_value,omitempty" db:"setting_value"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
