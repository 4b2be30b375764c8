package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Service is an entry of the salon's service menu.
type Service struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	DurationMinutes int             `json:"duration_minutes" db:"duration_minutes"`
	Active          bool            `json:"active" db:"active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// PackageItem is how many sessions of one service a package grants.
type PackageItem struct {
	ServiceID string `json:"service_id"`
	Quantity  int    `json:"quantity"`
}

// PackageItems is stored as JSONB.
type PackageItems []PackageItem

// Value implements driver.Valuer.
func (p PackageItems) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PackageItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = PackageItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("package items: unsupported column type")
	}
	var out PackageItems
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("package items: %w", err)
	}
	*p = out
	return nil
}

// Package is a sellable bundle of service sessions.
type Package struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	ValidityDays int             `json:"validity_days" db:"validity_days"` // 0 means no expiry
	Items        PackageItems    `json:"items" db:"items"`
	Active       bool            `json:"active" db:"active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
