package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// backupVersion is written into every export.
const backupVersion = 1

var ErrInvalidBackup = errors.New("invalid backup document")

// RestoreResult counts the records written per collection.
type RestoreResult struct {
	Counts map[string]int `json:"counts"`
}

// BackupService exports and restores the whole database as one JSON document.
type BackupService interface {
	Export() (*models.BackupDocument, error)
	Restore(raw []byte) (*RestoreResult, error)
}

type backupService struct {
	backupRepo       repositories.BackupRepository
	clientRepo       repositories.ClientRepository
	appointmentRepo  repositories.AppointmentRepository
	catalogRepo      repositories.CatalogRepository
	professionalRepo repositories.ProfessionalRepository
	productRepo      repositories.ProductRepository
	financeRepo      repositories.FinanceRepository
	settingRepo      repositories.SettingRepository
	messageRepo      repositories.MessageRepository
	db               *sql.DB
}

// BackupRepositories groups the repositories a backup touches.
type BackupRepositories struct {
	Backup       repositories.BackupRepository
	Client       repositories.ClientRepository
	Appointment  repositories.AppointmentRepository
	Catalog      repositories.CatalogRepository
	Professional repositories.ProfessionalRepository
	Product      repositories.ProductRepository
	Finance      repositories.FinanceRepository
	Setting      repositories.SettingRepository
	Message      repositories.MessageRepository
}

// NewBackupService creates a new instance of BackupService.
func NewBackupService(repos BackupRepositories, db *sql.DB) BackupService {
	return &backupService{
		backupRepo:       repos.Backup,
		clientRepo:       repos.Client,
		appointmentRepo:  repos.Appointment,
		catalogRepo:      repos.Catalog,
		professionalRepo: repos.Professional,
		productRepo:      repos.Product,
		financeRepo:      repos.Finance,
		settingRepo:      repos.Setting,
		messageRepo:      repos.Message,
		db:               db,
	}
}

func (s *backupService) Export() (*models.BackupDocument, error) {
	doc := &models.BackupDocument{Version: backupVersion, ExportedAt: time.Now().UTC()}
	var err error
	if doc.Clients, err = s.clientRepo.ListAllClients(s.db); err != nil {
		return nil, fmt.Errorf("failed to export clients: %w", err)
	}
	if doc.Appointments, err = s.appointmentRepo.ListAllAppointments(s.db); err != nil {
		return nil, fmt.Errorf("failed to export appointments: %w", err)
	}
	if doc.Services, err = s.catalogRepo.GetServices(s.db, false); err != nil {
		return nil, fmt.Errorf("failed to export services: %w", err)
	}
	if doc.Packages, err = s.catalogRepo.GetPackages(s.db, false); err != nil {
		return nil, fmt.Errorf("failed to export packages: %w", err)
	}
	if doc.Professionals, err = s.professionalRepo.GetProfessionals(s.db, false); err != nil {
		return nil, fmt.Errorf("failed to export professionals: %w", err)
	}
	if doc.Products, err = s.productRepo.GetProducts(s.db, false); err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}
	if doc.FinancialTransactions, err = s.financeRepo.ListAllTransactions(s.db); err != nil {
		return nil, fmt.Errorf("failed to export financial transactions: %w", err)
	}
	if doc.Settings, err = s.settingRepo.GetAll(s.db); err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	if doc.Conversations, err = s.messageRepo.GetConversations(s.db); err != nil {
		return nil, fmt.Errorf("failed to export conversations: %w", err)
	}
	if doc.Messages, err = s.messageRepo.ListAllMessages(s.db); err != nil {
		return nil, fmt.Errorf("failed to export messages: %w", err)
	}
	return doc, nil
}

// ParseBackup checks that the required collections are present and decodes
// the document. Optional collections may be missing.
func ParseBackup(raw []byte) (*models.BackupDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, key := range models.RequiredBackupCollections {
		value, ok := fields[key]
		if !ok || len(value) == 0 || value[0] != '[' {
			return nil, fmt.Errorf("%w: missing collection %q", ErrInvalidBackup, key)
		}
	}
	var doc models.BackupDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, c := range doc.Clients {
		if c.StampsEarned < 0 || c.MimosRedeemed < 0 {
			return nil, fmt.Errorf("%w: client %s has negative loyalty counters", ErrInvalidBackup, c.ID)
		}
		for i := range c.PurchasedPackages {
			if err := c.PurchasedPackages[i].Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
			}
		}
	}
	return &doc, nil
}

// Restore replaces every collection with the document's content inside one
// transaction; on any failure the previous data is kept.
func (s *backupService) Restore(raw []byte) (*RestoreResult, error) {
	doc, err := ParseBackup(raw)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.backupRepo.ClearAll(tx); err != nil {
		return nil, fmt.Errorf("failed to clear data before restore: %w", err)
	}

	counts := map[string]int{}
	restore := func(collection string, n int, insert func(i int) error) error {
		for i := 0; i < n; i++ {
			if err := insert(i); err != nil {
				if errors.Is(err, repositories.ErrDuplicateKey) || errors.Is(err, repositories.ErrReferenced) {
					return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidBackup, collection, i, err)
				}
				return fmt.Errorf("failed to restore %s[%d]: %w", collection, i, err)
			}
		}
		counts[collection] = n
		return nil
	}

	steps := []struct {
		name   string
		n      int
		insert func(i int) error
	}{
		{"settings", len(doc.Settings), func(i int) error { return s.settingRepo.Upsert(tx, &doc.Settings[i]) }},
		{"professionals", len(doc.Professionals), func(i int) error { return s.professionalRepo.CreateProfessional(tx, &doc.Professionals[i]) }},
		{"services", len(doc.Services), func(i int) error { return s.catalogRepo.CreateService(tx, &doc.Services[i]) }},
		{"packages", len(doc.Packages), func(i int) error { return s.catalogRepo.CreatePackage(tx, &doc.Packages[i]) }},
		{"products", len(doc.Products), func(i int) error { return s.productRepo.CreateProduct(tx, &doc.Products[i]) }},
		{"clients", len(doc.Clients), func(i int) error { return s.clientRepo.CreateClient(tx, &doc.Clients[i]) }},
		{"appointments", len(doc.Appointments), func(i int) error { return s.appointmentRepo.CreateAppointment(tx, &doc.Appointments[i]) }},
		{"financial_transactions", len(doc.FinancialTransactions), func(i int) error {
			return s.financeRepo.CreateTransaction(tx, &doc.FinancialTransactions[i])
		}},
		{"conversations", len(doc.Conversations), func(i int) error { return s.messageRepo.CreateConversation(tx, &doc.Conversations[i]) }},
		{"messages", len(doc.Messages), func(i int) error { return s.messageRepo.CreateMessage(tx, &doc.Messages[i]) }},
	}
	for _, step := range steps {
		if err := restore(step.name, step.n, step.insert); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit restore: %w", err)
	}
	utils.LogInfo("Backup restored", map[string]interface{}{"counts": counts})
	return &RestoreResult{Counts: counts}, nil
}
