package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/loyalty"
	"salon_backend/internal/metrics"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrPackageInactive         = errors.New("package is not available for sale")
	ErrPackageInstanceNotFound = errors.New("package instance not found for this client")
	ErrSaleValidation          = errors.New("package sale validation error")
)

// SellPackageRequest sells one package definition to a client.
type SellPackageRequest struct {
	PackageID     string  `json:"package_id" binding:"required"`
	PaidPrice     *string `json:"paid_price"` // defaults to the package price
	PaymentMethod *string `json:"payment_method"`
	PurchaseDate  *string `json:"purchase_date"` // YYYY-MM-DD, defaults to today
}

// PackageResult is returned by sale and reversal.
type PackageResult struct {
	Client   *models.Client                `json:"client"`
	Instance *models.ClientPackageInstance `json:"instance"`
	Loyalty  loyalty.Summary               `json:"loyalty"`
	Notices  []models.Notice               `json:"notices"`
}

// ExpirySweepResult summarises one run of ExpireOverduePackages.
type ExpirySweepResult struct {
	ClientsUpdated   int `json:"clients_updated"`
	InstancesExpired int `json:"instances_expired"`
}

// PackageService handles packages owned by clients: sale, reversal and expiry.
type PackageService interface {
	SellPackage(clientID string, req SellPackageRequest) (*PackageResult, error)
	GetClientPackages(clientID string) (models.PackageInstances, error)
	DeletePackageInstance(clientID, instanceID string) (*PackageResult, error)
	ExpireOverduePackages() (*ExpirySweepResult, error)
}

type packageService struct {
	clientRepo  repositories.ClientRepository
	catalogRepo repositories.CatalogRepository
	financeRepo repositories.FinanceRepository
	db          *sql.DB
	cfg         *config.Config
}

// NewPackageService creates a new instance of PackageService.
func NewPackageService(
	cr repositories.ClientRepository,
	car repositories.CatalogRepository,
	fr repositories.FinanceRepository,
	db *sql.DB,
	cfg *config.Config,
) PackageService {
	return &packageService{
		clientRepo:  cr,
		catalogRepo: car,
		financeRepo: fr,
		db:          db,
		cfg:         cfg,
	}
}

// newInstance snapshots a package definition into a fresh client instance.
func newInstance(pkg *models.Package, purchase time.Time) models.ClientPackageInstance {
	inst := models.ClientPackageInstance{
		ID:           uuid.NewString(),
		PackageID:    pkg.ID,
		PackageName:  pkg.Name,
		PurchaseDate: purchase,
		PaidPrice:    pkg.Price,
		Status:       models.PackageStatusActive,
		Services:     make([]models.PackageServiceCredit, 0, len(pkg.Items)),
	}
	if pkg.ValidityDays > 0 {
		expiry := purchase.AddDate(0, 0, pkg.ValidityDays)
		inst.ExpiryDate = &expiry
	}
	for _, item := range pkg.Items {
		inst.Services = append(inst.Services, models.PackageServiceCredit{
			ServiceID:         item.ServiceID,
			TotalQuantity:     item.Quantity,
			RemainingQuantity: item.Quantity,
		})
	}
	return inst
}

// SellPackage appends the instance, records the income and awards one stamp,
// all in one transaction. The stamp is earned regardless of credit usage.
func (s *packageService) SellPackage(clientID string, req SellPackageRequest) (*PackageResult, error) {
	purchase := s.cfg.Today()
	if req.PurchaseDate != nil && strings.TrimSpace(*req.PurchaseDate) != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(*req.PurchaseDate), s.cfg.Location)
		if err != nil {
			return nil, ErrDateFormat
		}
		purchase = d
	}
	paid, err := utils.ParseOptionalAmount(req.PaidPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaleValidation, err)
	}
	if paid != nil && paid.IsNegative() {
		return nil, fmt.Errorf("%w: paid_price cannot be negative", ErrSaleValidation)
	}

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
		return nil, fmt.Errorf("failed to load client for sale: %w", err)
	}
	pkg, err := s.catalogRepo.GetPackageByID(tx, req.PackageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to load package for sale: %w", err)
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}
	if len(pkg.Items) == 0 {
		return nil, fmt.Errorf("%w: package %s has no services", ErrSaleValidation, pkg.ID)
	}

	inst := newInstance(pkg, purchase)
	if paid != nil && !paid.Equal(pkg.Price) {
		original := pkg.Price
		inst.OriginalPrice = &original
		inst.PaidPrice = *paid
	}
	client.PurchasedPackages = append(client.PurchasedPackages.Clone(), inst)
	if err := s.clientRepo.UpdatePackages(tx, client.ID, client.PurchasedPackages); err != nil {
		return nil, fmt.Errorf("failed to save purchased package: %w", err)
	}

	if err := recordTransaction(tx, s.financeRepo, &models.FinancialTransaction{
		Description:   fmt.Sprintf("Venda de pacote %s - %s", inst.PackageName, client.Name),
		Amount:        inst.PaidPrice,
		Date:          purchase,
		Category:      models.CategoryPackageSale,
		Type:          models.TransactionIncome,
		PaymentMethod: req.PaymentMethod,
		ReferenceID:   &inst.ID,
	}); err != nil {
		return nil, err
	}
	notices := []models.Notice{models.NewNotice(models.NoticeSuccess, models.NoticeIncomeRecorded,
		fmt.Sprintf("Receita de R$ %s registrada", utils.FormatAmount(inst.PaidPrice)))}

	stampNotice, err := awardStamp(tx, s.clientRepo, client)
	if err != nil {
		return nil, err
	}
	notices = append(notices, stampNotice)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit package sale: %w", err)
	}
	metrics.RecordPackage(metrics.EventPackageSold, 1)
	utils.LogInfo("Package sold", map[string]interface{}{
		"client_id": client.ID, "package_id": pkg.ID, "instance_id": inst.ID, "paid_price": inst.PaidPrice.StringFixed(2),
	})

	return &PackageResult{
		Client:   client,
		Instance: &inst,
		Loyalty:  loyalty.Summarize(client.StampsEarned, client.MimosRedeemed),
		Notices:  notices,
	}, nil
}

func (s *packageService) GetClientPackages(clientID string) (models.PackageInstances, error) {
	client, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to load client packages: %w", err)
	}
	return client.PurchasedPackages, nil
}

// DeletePackageInstance reverses a sale: the instance is removed, its paid
// price is recorded as an expense and one stamp is taken back.
func (s *packageService) DeletePackageInstance(clientID, instanceID string) (*PackageResult, error) {
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
		return nil, fmt.Errorf("failed to load client for package reversal: %w", err)
	}
	idx := client.PurchasedPackages.Find(instanceID)
	if idx < 0 {
		return nil, ErrPackageInstanceNotFound
	}
	removed := client.PurchasedPackages[idx]
	remaining := make(models.PackageInstances, 0, len(client.PurchasedPackages)-1)
	remaining = append(remaining, client.PurchasedPackages[:idx]...)
	remaining = append(remaining, client.PurchasedPackages[idx+1:]...)
	client.PurchasedPackages = remaining
	if err := s.clientRepo.UpdatePackages(tx, client.ID, client.PurchasedPackages); err != nil {
		return nil, fmt.Errorf("failed to remove package instance: %w", err)
	}

	if err := recordTransaction(tx, s.financeRepo, &models.FinancialTransaction{
		Description: fmt.Sprintf("Estorno de pacote %s - %s", removed.PackageName, client.Name),
		Amount:      removed.PaidPrice,
		Date:        s.cfg.Today(),
		Category:    models.CategoryPackageRefund,
		Type:        models.TransactionExpense,
		ReferenceID: &removed.ID,
	}); err != nil {
		return nil, err
	}
	notices := []models.Notice{models.NewNotice(models.NoticeInfo, models.NoticeExpenseRecorded,
		fmt.Sprintf("Estorno de R$ %s registrado", utils.FormatAmount(removed.PaidPrice)))}
	if used, total := consumedCredits(removed); used > 0 {
		notices = append(notices, models.NewNotice(models.NoticeWarning, models.NoticePartialReversal,
			fmt.Sprintf("Pacote %s já tinha %d de %d sessões utilizadas; o valor integral foi estornado", removed.PackageName, used, total)))
	}

	stampNotice, err := revertStamp(tx, s.clientRepo, client)
	if err != nil {
		return nil, err
	}
	notices = append(notices, stampNotice)
	if loyalty.Overdrawn(client.StampsEarned, client.MimosRedeemed) {
		notices = append(notices, models.NewNotice(models.NoticeWarning, models.NoticeMimosOverdrawn,
			fmt.Sprintf("%s já resgatou %d mimo(s), mais do que os %d ganhos após o estorno", client.Name,
				client.MimosRedeemed, loyalty.MimosEarnedTotal(client.StampsEarned))))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit package reversal: %w", err)
	}
	metrics.RecordPackage(metrics.EventPackageReversed, 1)
	utils.LogInfo("Package instance reversed", map[string]interface{}{
		"client_id": client.ID, "instance_id": removed.ID, "refund": removed.PaidPrice.StringFixed(2),
	})

	return &PackageResult{
		Client:   client,
		Instance: &removed,
		Loyalty:  loyalty.Summarize(client.StampsEarned, client.MimosRedeemed),
		Notices:  notices,
	}, nil
}

// consumedCredits returns how many credits of inst were used and how many it had.
func consumedCredits(inst models.ClientPackageInstance) (used, total int) {
	for _, svc := range inst.Services {
		used += svc.TotalQuantity - svc.RemainingQuantity
		total += svc.TotalQuantity
	}
	return used, total
}

// ExpireOverduePackages flips Ativo instances past their expiry date to
// Expirado. Each client is locked and written in its own transaction so a
// failure on one client does not block the others.
func (s *packageService) ExpireOverduePackages() (*ExpirySweepResult, error) {
	today := s.cfg.Today()
	clients, err := s.clientRepo.ListAllClients(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients for expiry sweep: %w", err)
	}

	result := &ExpirySweepResult{}
	var failures []string
	for _, candidate := range clients {
		if !hasOverdue(candidate.PurchasedPackages, today) {
			continue
		}
		n, err := s.expireClient(candidate.ID, today)
		if err != nil {
			utils.LogError(err, "Failed to expire packages of client "+candidate.ID)
			failures = append(failures, candidate.ID)
			continue
		}
		if n > 0 {
			result.ClientsUpdated++
			result.InstancesExpired += n
		}
	}
	metrics.RecordPackage(metrics.EventPackageExpired, result.InstancesExpired)
	if len(failures) > 0 {
		return result, fmt.Errorf("expiry sweep failed for %d clients: %s", len(failures), strings.Join(failures, ", "))
	}
	return result, nil
}

func hasOverdue(pkgs models.PackageInstances, today time.Time) bool {
	for i := range pkgs {
		if pkgs[i].Status == models.PackageStatusActive && pkgs[i].IsExpired(today) {
			return true
		}
	}
	return false
}

func (s *packageService) expireClient(clientID string, today time.Time) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	client, err := s.clientRepo.GetClientForUpdate(tx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	pkgs := client.PurchasedPackages.Clone()
	changed := loyalty.MarkExpired(pkgs, today)
	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.clientRepo.UpdatePackages(tx, client.ID, pkgs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(changed), nil
}
