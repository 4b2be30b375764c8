package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/loyalty"
	"salon_backend/internal/metrics"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrClientValidation = errors.New("client data validation error")
	ErrDateFormat       = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrNoMimosAvailable = errors.New("no mimos available")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name      string  `json:"name" binding:"required"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"` // Format YYYY-MM-DD
	Notes     *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"` // Format YYYY-MM-DD
	Notes     *string `json:"notes"`
}

// LoyaltyResult is returned by every operation that touches the stamp card.
type LoyaltyResult struct {
	Client  *models.Client  `json:"client"`
	Loyalty loyalty.Summary `json:"loyalty"`
	Notices []models.Notice `json:"notices"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(req CreateClientRequest) (*models.Client, error)
	GetClientByID(clientID string) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(clientID string, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(clientID string) error

	AwardStamp(clientID string) (*LoyaltyResult, error)
	RedeemMimo(clientID string) (*LoyaltyResult, error)
	ResetCard(clientID string) (*LoyaltyResult, error)
	LoyaltySummary(clientID string) (*loyalty.Summary, error)
}

// --- clientService Implementation ---
type clientService struct {
	clientRepo repositories.ClientRepository
	db         *sql.DB
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, db *sql.DB) ClientService {
	return &clientService{
		clientRepo: repo,
		db:         db,
	}
}

func validateEmail(email *string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	if !utils.IsValidEmail(*email) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	return nil
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, ErrDateFormat
	}
	if dob.After(time.Now()) {
		return nil, fmt.Errorf("%w: birth date cannot be in the future", ErrClientValidation)
	}
	return &dob, nil
}

func (s *clientService) CreateClient(req CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrClientValidation)
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	dob, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		Name:              name,
		Email:             req.Email,
		Phone:             req.Phone,
		BirthDate:         dob,
		Notes:             req.Notes,
		PurchasedPackages: models.PackageInstances{},
	}
	if err := s.clientRepo.CreateClient(s.db, client); err != nil {
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClientByID(clientID string) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	clients, totalCount, err := s.clientRepo.GetClients(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, totalCount, nil
}

func (s *clientService) UpdateClient(clientID string, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClientByID(clientID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty if provided", ErrClientValidation)
		}
		client.Name = name
	}
	if req.Email != nil {
		if err := validateEmail(req.Email); err != nil {
			return nil, err
		}
		client.Email = req.Email
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.BirthDate != nil {
		dob, err := parseBirthDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		client.BirthDate = dob
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if err := s.clientRepo.UpdateClient(s.db, client); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client in repository: %w", err)
	}
	return client, nil
}

// DeleteClient removes the client only. Appointments and ledger entries that
// mention the client are left untouched.
func (s *clientService) DeleteClient(clientID string) error {
	if err := s.clientRepo.DeleteClient(s.db, clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// mutateLoyalty locks the client, lets fn change the counters and persists them
// in one transaction.
func (s *clientService) mutateLoyalty(clientID string, fn func(executor repositories.SQLExecutor, client *models.Client) ([]models.Notice, error)) (*LoyaltyResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	client, err := s.clientRepo.GetClientForUpdate(tx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client %s: %w", clientID, err)
	}

	notices, err := fn(tx, client)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit loyalty transaction: %w", err)
	}
	return &LoyaltyResult{
		Client:  client,
		Loyalty: loyalty.Summarize(client.StampsEarned, client.MimosRedeemed),
		Notices: notices,
	}, nil
}

func (s *clientService) AwardStamp(clientID string) (*LoyaltyResult, error) {
	return s.mutateLoyalty(clientID, func(executor repositories.SQLExecutor, client *models.Client) ([]models.Notice, error) {
		notice, err := awardStamp(executor, s.clientRepo, client)
		if err != nil {
			return nil, err
		}
		return []models.Notice{notice}, nil
	})
}

func (s *clientService) RedeemMimo(clientID string) (*LoyaltyResult, error) {
	return s.mutateLoyalty(clientID, func(executor repositories.SQLExecutor, client *models.Client) ([]models.Notice, error) {
		if !loyalty.CanRedeem(client.StampsEarned, client.MimosRedeemed) {
			return nil, ErrNoMimosAvailable
		}
		client.MimosRedeemed++
		if err := s.clientRepo.UpdateLoyalty(executor, client.ID, client.StampsEarned, client.MimosRedeemed); err != nil {
			return nil, fmt.Errorf("failed to redeem mimo: %w", err)
		}
		metrics.RecordLoyalty(metrics.EventMimoRedeemed)
		utils.LogInfo("Mimo redeemed", map[string]interface{}{"client_id": client.ID, "mimos_redeemed": client.MimosRedeemed})
		return []models.Notice{models.NewNotice(models.NoticeSuccess, models.NoticeMimoRedeemed,
			fmt.Sprintf("Mimo resgatado para %s", client.Name))}, nil
	})
}

func (s *clientService) ResetCard(clientID string) (*LoyaltyResult, error) {
	return s.mutateLoyalty(clientID, func(executor repositories.SQLExecutor, client *models.Client) ([]models.Notice, error) {
		client.StampsEarned = 0
		client.MimosRedeemed = 0
		if err := s.clientRepo.UpdateLoyalty(executor, client.ID, 0, 0); err != nil {
			return nil, fmt.Errorf("failed to reset loyalty card: %w", err)
		}
		metrics.RecordLoyalty(metrics.EventCardReset)
		utils.LogInfo("Loyalty card reset", map[string]interface{}{"client_id": client.ID})
		return []models.Notice{models.NewNotice(models.NoticeInfo, models.NoticeCardReset,
			fmt.Sprintf("Cartão fidelidade de %s zerado", client.Name))}, nil
	})
}

func (s *clientService) LoyaltySummary(clientID string) (*loyalty.Summary, error) {
	client, err := s.GetClientByID(clientID)
	if err != nil {
		return nil, err
	}
	summary := loyalty.Summarize(client.StampsEarned, client.MimosRedeemed)
	return &summary, nil
}

// awardStamp adds one stamp to an already locked client and persists it.
// Completing a card yields a distinct notice.
func awardStamp(executor repositories.SQLExecutor, repo repositories.ClientRepository, client *models.Client) (models.Notice, error) {
	client.StampsEarned++
	if err := repo.UpdateLoyalty(executor, client.ID, client.StampsEarned, client.MimosRedeemed); err != nil {
		client.StampsEarned--
		return models.Notice{}, fmt.Errorf("failed to award stamp: %w", err)
	}
	metrics.RecordLoyalty(metrics.EventStampAwarded)

	if loyalty.CompletesCard(client.StampsEarned) {
		metrics.RecordLoyalty(metrics.EventCardCompleted)
		utils.LogInfo("Loyalty card completed", map[string]interface{}{"client_id": client.ID, "stamps_earned": client.StampsEarned})
		return models.NewNotice(models.NoticeSuccess, models.NoticeCardCompleted,
			fmt.Sprintf("%s completou o cartão fidelidade!", client.Name)), nil
	}
	return models.NewNotice(models.NoticeSuccess, models.NoticeStampAwarded,
		fmt.Sprintf("Carimbo adicionado para %s (%d/%d)", client.Name,
			loyalty.StampsOnCurrentCard(client.StampsEarned), loyalty.CardSize)), nil
}

// revertStamp removes one stamp from an already locked client, floored at zero.
func revertStamp(executor repositories.SQLExecutor, repo repositories.ClientRepository, client *models.Client) (models.Notice, error) {
	previous := client.StampsEarned
	client.StampsEarned = loyalty.RevertStamp(previous)
	if client.StampsEarned == previous {
		return models.NewNotice(models.NoticeInfo, models.NoticeStampReverted,
			fmt.Sprintf("%s não tinha carimbos para remover", client.Name)), nil
	}
	if err := repo.UpdateLoyalty(executor, client.ID, client.StampsEarned, client.MimosRedeemed); err != nil {
		client.StampsEarned = previous
		return models.Notice{}, fmt.Errorf("failed to revert stamp: %w", err)
	}
	metrics.RecordLoyalty(metrics.EventStampReverted)
	return models.NewNotice(models.NoticeInfo, models.NoticeStampReverted,
		fmt.Sprintf("Carimbo removido de %s", client.Name)), nil
}
