package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a retail or back-bar item whose stock is tracked.
type Product struct {
	ID                string           `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	SKU               *string          `json:"sku,omitempty" db:"sku"`
	Price             decimal.Decimal  `json:"price" db:"price"`
	Cost              *decimal.Decimal `json:"cost,omitempty" db:"cost"`
	Stock             int              `json:"stock" db:"stock"`
	LowStockThreshold *int             `json:"low_stock_threshold,omitempty" db:"low_stock_threshold"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether stock is at or below the configured threshold.
func (p *Product) IsLowStock() bool {
	return p.LowStockThreshold != nil && p.Stock <= *p.LowStockThreshold
}
