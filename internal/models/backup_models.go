package models

import "time"

// Collections every restore document must carry.
var RequiredBackupCollections = []string{"clients", "appointments", "services"}

// BackupDocument is the whole-database export, one field per collection.
type BackupDocument struct {
	Version               int                    `json:"version"`
	ExportedAt            time.Time              `json:"exported_at"`
	Clients               []Client               `json:"clients"`
	Appointments          []Appointment          `json:"appointments"`
	Services              []Service              `json:"services"`
	Packages              []Package              `json:"packages"`
	Professionals         []Professional         `json:"professionals"`
	Products              []Product              `json:"products"`
	FinancialTransactions []FinancialTransaction `json:"financial_transactions"`
	Settings              []ApplicationSetting   `json:"settings"`
	Conversations         []Conversation         `json:"conversations"`
	Messages              []Message              `json:"messages"`
}
