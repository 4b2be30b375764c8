package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus defines the type for appointment statuses
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Agendado"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmado"
	AppointmentStatusCompleted AppointmentStatus = "Concluído"
	AppointmentStatusCancelled AppointmentStatus = "Cancelado"
)

// IsValidAppointmentStatus checks if the provided status string is a valid AppointmentStatus.
func IsValidAppointmentStatus(status string) bool {
	switch AppointmentStatus(status) {
	case AppointmentStatusScheduled,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// CanTransitionTo allows Agendado -> Confirmado -> Concluído and cancelling
// from any non-terminal state. Skipping confirmation is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	switch next {
	case AppointmentStatusConfirmed:
		return s == AppointmentStatusScheduled
	case AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Appointment is a scheduled or completed visit.
type Appointment struct {
	ID                string            `json:"id" db:"id"`
	ClientID          *string           `json:"client_id,omitempty" db:"client_id"`
	ClientName        string            `json:"client_name" db:"client_name"`
	ServiceIDs        []string          `json:"service_ids" db:"service_ids"`
	ProfessionalID    string            `json:"professional_id" db:"professional_id"`
	Date              time.Time         `json:"date" db:"date"`
	StartTime         string            `json:"start_time" db:"start_time"` // HH:MM
	EndTime           string            `json:"end_time" db:"end_time"`     // HH:MM
	Status            AppointmentStatus `json:"status" db:"status"`
	TotalAmount       decimal.Decimal   `json:"total_amount" db:"total_amount"`
	Discount          decimal.Decimal   `json:"discount" db:"discount"`
	ExtraAmount       decimal.Decimal   `json:"extra_amount" db:"extra_amount"`
	PaymentMethod     *string           `json:"payment_method,omitempty" db:"payment_method"`
	Notes             *string           `json:"notes,omitempty" db:"notes"`
	RecurrenceGroupID *string           `json:"recurrence_group_id,omitempty" db:"recurrence_group_id"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// AppointmentFilters defines the available filters for querying appointments.
type AppointmentFilters struct {
	ClientID       *string    `form:"client_id"`
	ProfessionalID *string    `form:"professional_id"`
	DateFrom       *time.Time `form:"date_from"` // YYYY-MM-DD
	DateTo         *time.Time `form:"date_to"`   // YYYY-MM-DD
	Status         *string    `form:"status"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
}
