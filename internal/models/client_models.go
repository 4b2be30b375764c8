package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PackageStatus is the lifecycle state of a package a client bought.
type PackageStatus string

const (
	PackageStatusActive    PackageStatus = "Ativo"
	PackageStatusUsed      PackageStatus = "Utilizado"
	PackageStatusExpired   PackageStatus = "Expirado"
	PackageStatusCancelled PackageStatus = "Cancelado"
)

// IsValidPackageStatus checks if the provided status string is a valid PackageStatus.
func IsValidPackageStatus(status string) bool {
	switch PackageStatus(status) {
	case PackageStatusActive, PackageStatusUsed, PackageStatusExpired, PackageStatusCancelled:
		return true
	default:
		return false
	}
}

// PackageServiceCredit is the per-service balance inside a sold package.
type PackageServiceCredit struct {
	ServiceID         string `json:"service_id"`
	TotalQuantity     int    `json:"total_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

// ClientPackageInstance is one package sold to one client. It is owned by the
// client row and stored inside it.
type ClientPackageInstance struct {
	ID            string                 `json:"id"`
	PackageID     string                 `json:"package_id"`
	PackageName   string                 `json:"package_name"`
	PurchaseDate  time.Time              `json:"purchase_date"`
	ExpiryDate    *time.Time             `json:"expiry_date,omitempty"`
	PaidPrice     decimal.Decimal        `json:"paid_price"`
	OriginalPrice *decimal.Decimal       `json:"original_price,omitempty"`
	Status        PackageStatus          `json:"status"`
	Services      []PackageServiceCredit `json:"services"`
}

// IsExpired reports whether the instance expired before the given day.
// An instance expiring today is still usable today.
func (p *ClientPackageInstance) IsExpired(today time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	return DateOnly(*p.ExpiryDate).Before(DateOnly(today))
}

// IsEligible reports whether credits of this instance may be consumed today.
func (p *ClientPackageInstance) IsEligible(today time.Time) bool {
	return p.Status == PackageStatusActive && !p.IsExpired(today)
}

// AllConsumed reports whether every service entry has no credit left.
func (p *ClientPackageInstance) AllConsumed() bool {
	for _, s := range p.Services {
		if s.RemainingQuantity > 0 {
			return false
		}
	}
	return true
}

// Validate checks the quantity invariant of every service entry.
func (p *ClientPackageInstance) Validate() error {
	if !IsValidPackageStatus(string(p.Status)) {
		return fmt.Errorf("package instance %s: invalid status %q", p.ID, p.Status)
	}
	for _, s := range p.Services {
		if s.RemainingQuantity < 0 || s.RemainingQuantity > s.TotalQuantity {
			return fmt.Errorf("package instance %s: service %s remaining %d out of [0,%d]",
				p.ID, s.ServiceID, s.RemainingQuantity, s.TotalQuantity)
		}
	}
	return nil
}

// PackageInstances is the JSONB column holding a client's purchased packages.
type PackageInstances []ClientPackageInstance

// Value implements driver.Valuer.
func (p PackageInstances) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PackageInstances) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = PackageInstances{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("purchased_packages: unsupported column type")
	}
	var out PackageInstances
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("purchased_packages: %w", err)
	}
	if out == nil {
		out = PackageInstances{}
	}
	*p = out
	return nil
}

// Find returns the index of the instance with the given id, or -1.
func (p PackageInstances) Find(instanceID string) int {
	for i := range p {
		if p[i].ID == instanceID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (p PackageInstances) Clone() PackageInstances {
	out := make(PackageInstances, len(p))
	for i, inst := range p {
		inst.Services = append([]PackageServiceCredit(nil), inst.Services...)
		out[i] = inst
	}
	return out
}

// Client represents a customer of the salon together with their loyalty state.
type Client struct {
	ID                string           `json:"id" db:"id"`
	Name              string           `json:"name" db:"name" binding:"required"`
	Email             *string          `json:"email,omitempty" db:"email"`
	Phone             *string          `json:"phone,omitempty" db:"phone"`
	BirthDate         *time.Time       `json:"birth_date,omitempty" db:"birth_date"`
	Notes             *string          `json:"notes,omitempty" db:"notes"`
	StampsEarned      int              `json:"stamps_earned" db:"stamps_earned"`
	MimosRedeemed     int              `json:"mimos_redeemed" db:"mimos_redeemed"`
	PurchasedPackages PackageInstances `json:"purchased_packages" db:"purchased_packages"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
