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
	"salon_backend/internal/scheduling"
	"salon_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Appointment ---
var (
	ErrAppointmentNotFound        = errors.New("appointment not found")
	ErrAppointmentValidation      = errors.New("appointment data validation error")
	ErrProfessionalNotAvailable   = errors.New("professional is not available for the requested time")
	ErrInvalidStatusTransition    = errors.New("invalid appointment status transition")
	ErrAppointmentLocked          = errors.New("appointment is completed or cancelled and can no longer be edited")
	ErrUnknownAppointmentService  = errors.New("appointment references a service that does not exist")
	ErrClientForAppointmentAbsent = errors.New("client specified for appointment not found")
)

// --- Appointment DTOs ---
type CreateAppointmentRequest struct {
	ClientID       *string  `json:"client_id"`
	ClientName     *string  `json:"client_name"`
	ServiceIDs     []string `json:"service_ids" binding:"required"`
	ProfessionalID string   `json:"professional_id" binding:"required"`
	Date           string   `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime      string   `json:"start_time" binding:"required"` // HH:MM
	EndTime        *string  `json:"end_time"`                      // defaults to start + service durations
	TotalAmount    *string  `json:"total_amount"`                  // defaults to prices - discount + extra
	Discount       *string  `json:"discount"`
	ExtraAmount    *string  `json:"extra_amount"`
	PaymentMethod  *string  `json:"payment_method"`
	Notes          *string  `json:"notes"`
}

type UpdateAppointmentRequest struct {
	ClientID       *string  `json:"client_id"`
	ClientName     *string  `json:"client_name"`
	ServiceIDs     []string `json:"service_ids"`
	ProfessionalID *string  `json:"professional_id"`
	Date           *string  `json:"date"`
	StartTime      *string  `json:"start_time"`
	EndTime        *string  `json:"end_time"`
	TotalAmount    *string  `json:"total_amount"`
	Discount       *string  `json:"discount"`
	ExtraAmount    *string  `json:"extra_amount"`
	PaymentMethod  *string  `json:"payment_method"`
	Notes          *string  `json:"notes"`
}

type ChangeStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	PaymentMethod *string `json:"payment_method"`
}

type RecurringAppointmentRequest struct {
	CreateAppointmentRequest
	Frequency string  `json:"frequency" binding:"required"` // weekly | biweekly
	Count     *int    `json:"count"`
	Until     *string `json:"until"` // YYYY-MM-DD, used when count is absent
}

// AppointmentResult carries the appointment plus whatever the operation did
// to the client's card and packages.
type AppointmentResult struct {
	Appointment *models.Appointment  `json:"appointment"`
	Client      *models.Client       `json:"client,omitempty"`
	Loyalty     *loyalty.Summary     `json:"loyalty,omitempty"`
	Consumption *loyalty.Consumption `json:"consumption,omitempty"`
	Notices     []models.Notice      `json:"notices"`
}

type RecurringResult struct {
	RecurrenceGroupID string               `json:"recurrence_group_id"`
	Created           []models.Appointment `json:"created"`
	Skipped           []string             `json:"skipped_dates"`
	Notices           []models.Notice      `json:"notices"`
}

// --- AppointmentService Interface ---
type AppointmentService interface {
	CreateAppointment(req CreateAppointmentRequest) (*AppointmentResult, error)
	GetAppointmentByID(id string) (*models.Appointment, error)
	GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error)
	UpdateAppointment(id string, req UpdateAppointmentRequest) (*AppointmentResult, error)
	ChangeStatus(id string, req ChangeStatusRequest) (*AppointmentResult, error)
	DeleteAppointment(id string) error
	CreateRecurring(req RecurringAppointmentRequest) (*RecurringResult, error)
	FreeSlots(professionalID, date string, durationMinutes int) ([]scheduling.TimeRange, error)
}

// --- appointmentService Implementation ---
type appointmentService struct {
	appointmentRepo  repositories.AppointmentRepository
	clientRepo       repositories.ClientRepository
	catalogRepo      repositories.CatalogRepository
	professionalRepo repositories.ProfessionalRepository
	financeRepo      repositories.FinanceRepository
	settingRepo      repositories.SettingRepository
	db               *sql.DB
	cfg              *config.Config
	policy           loyalty.CreditPolicy
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	ar repositories.AppointmentRepository,
	cr repositories.ClientRepository,
	car repositories.CatalogRepository,
	pr repositories.ProfessionalRepository,
	fr repositories.FinanceRepository,
	sr repositories.SettingRepository,
	db *sql.DB,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		appointmentRepo:  ar,
		clientRepo:       cr,
		catalogRepo:      car,
		professionalRepo: pr,
		financeRepo:      fr,
		settingRepo:      sr,
		db:               db,
		cfg:              cfg,
		policy:           loyalty.SoonestExpiringFirst,
	}
}

func (s *appointmentService) parseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), s.cfg.Location)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return d, nil
}

// loadServices returns the catalog entries for ids, which must all exist.
func (s *appointmentService) loadServices(executor repositories.SQLExecutor, ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrAppointmentValidation)
	}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: empty service id", ErrAppointmentValidation)
		}
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	found, err := s.catalogRepo.GetServicesByIDs(executor, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment services: %w", err)
	}
	if len(found) != len(unique) {
		return nil, ErrUnknownAppointmentService
	}
	byID := make(map[string]models.Service, len(found))
	for _, svc := range found {
		byID[svc.ID] = svc
	}
	// One entry per requested id so repeated services count twice.
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

// computeTotal is the sum of service prices minus discount plus extra,
// never below zero.
func computeTotal(services []models.Service, discount, extra decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, svc := range services {
		total = total.Add(svc.Price)
	}
	total = total.Sub(discount).Add(extra)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

func totalDuration(services []models.Service) int {
	minutes := 0
	for _, svc := range services {
		minutes += svc.DurationMinutes
	}
	return minutes
}

// resolveTimes normalises start and end to zero-padded HH:MM; the end defaults
// to start plus the services' durations.
func resolveTimes(start string, end *string, services []models.Service) (string, string, error) {
	startMin, err := scheduling.ParseClock(strings.TrimSpace(start))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrAppointmentValidation, err)
	}
	if end != nil && strings.TrimSpace(*end) != "" {
		_, endMin, err := scheduling.ParseRange(scheduling.FormatClock(startMin), strings.TrimSpace(*end))
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrAppointmentValidation, err)
		}
		return scheduling.FormatClock(startMin), scheduling.FormatClock(endMin), nil
	}
	duration := totalDuration(services)
	if duration <= 0 {
		return "", "", fmt.Errorf("%w: end_time is required when services have no duration", ErrAppointmentValidation)
	}
	if startMin+duration >= 24*60 {
		return "", "", fmt.Errorf("%w: appointment would end after midnight", ErrAppointmentValidation)
	}
	return scheduling.FormatClock(startMin), scheduling.FormatClock(startMin + duration), nil
}

// attachClient fills ClientID and ClientName. A name without id is linked
// when exactly one client carries it.
func (s *appointmentService) attachClient(appt *models.Appointment, clientID, clientName *string) error {
	if clientID != nil && strings.TrimSpace(*clientID) != "" {
		client, err := s.clientRepo.GetClientByID(strings.TrimSpace(*clientID))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrClientForAppointmentAbsent
			}
			return fmt.Errorf("failed to load appointment client: %w", err)
		}
		appt.ClientID = &client.ID
		appt.ClientName = client.Name
		return nil
	}
	if clientName == nil || strings.TrimSpace(*clientName) == "" {
		return fmt.Errorf("%w: client_id or client_name is required", ErrAppointmentValidation)
	}
	appt.ClientID = nil
	appt.ClientName = strings.TrimSpace(*clientName)
	matches, err := s.clientRepo.FindClientsByName(s.db, appt.ClientName)
	if err != nil {
		return fmt.Errorf("failed to match appointment client: %w", err)
	}
	if len(matches) == 1 {
		appt.ClientID = &matches[0].ID
		appt.ClientName = matches[0].Name
	}
	return nil
}

func (s *appointmentService) checkProfessional(id string) error {
	p, err := s.professionalRepo.GetProfessionalByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("failed to load professional: %w", err)
	}
	if !p.Active {
		return fmt.Errorf("%w: professional %s is inactive", ErrAppointmentValidation, p.Name)
	}
	return nil
}

func parseAmounts(total, discount, extra *string) (*decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	t, err := utils.ParseOptionalAmount(total)
	if err != nil {
		return nil, decimal.Zero, decimal.Zero, fmt.Errorf("%w: total_amount: %v", ErrAppointmentValidation, err)
	}
	d := decimal.Zero
	if p, err := utils.ParseOptionalAmount(discount); err != nil {
		return nil, decimal.Zero, decimal.Zero, fmt.Errorf("%w: discount: %v", ErrAppointmentValidation, err)
	} else if p != nil {
		d = *p
	}
	e := decimal.Zero
	if p, err := utils.ParseOptionalAmount(extra); err != nil {
		return nil, decimal.Zero, decimal.Zero, fmt.Errorf("%w: extra_amount: %v", ErrAppointmentValidation, err)
	} else if p != nil {
		e = *p
	}
	if d.IsNegative() || e.IsNegative() || (t != nil && t.IsNegative()) {
		return nil, decimal.Zero, decimal.Zero, fmt.Errorf("%w: amounts cannot be negative", ErrAppointmentValidation)
	}
	return t, d, e, nil
}

// buildAppointment validates req and returns an unsaved Agendado appointment.
func (s *appointmentService) buildAppointment(req CreateAppointmentRequest) (*models.Appointment, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := s.checkProfessional(req.ProfessionalID); err != nil {
		return nil, err
	}
	services, err := s.loadServices(s.db, req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	start, end, err := resolveTimes(req.StartTime, req.EndTime, services)
	if err != nil {
		return nil, err
	}
	total, discount, extra, err := parseAmounts(req.TotalAmount, req.Discount, req.ExtraAmount)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ServiceIDs:     append([]string(nil), req.ServiceIDs...),
		ProfessionalID: req.ProfessionalID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Status:         models.AppointmentStatusScheduled,
		Discount:       discount,
		ExtraAmount:    extra,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
	}
	if total != nil {
		appt.TotalAmount = *total
	} else {
		appt.TotalAmount = computeTotal(services, discount, extra)
	}
	if err := s.attachClient(appt, req.ClientID, req.ClientName); err != nil {
		return nil, err
	}
	return appt, nil
}

func clientLinkNotices(appt *models.Appointment) []models.Notice {
	if appt.ClientID != nil {
		return []models.Notice{}
	}
	return []models.Notice{models.NewNotice(models.NoticeWarning, models.NoticeClientNotFound,
		fmt.Sprintf("Nenhum cliente cadastrado corresponde a %q; fidelidade e pacotes não serão aplicados", appt.ClientName))}
}

func (s *appointmentService) CreateAppointment(req CreateAppointmentRequest) (*AppointmentResult, error) {
	appt, err := s.buildAppointment(req)
	if err != nil {
		return nil, err
	}

	available, err := s.appointmentRepo.CheckProfessionalAvailability(s.db, appt.ProfessionalID, appt.Date, appt.StartTime, appt.EndTime, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check professional availability: %w", err)
	}
	if !available {
		return nil, ErrProfessionalNotAvailable
	}
	if err := s.appointmentRepo.CreateAppointment(s.db, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return &AppointmentResult{Appointment: appt, Notices: clientLinkNotices(appt)}, nil
}

func (s *appointmentService) GetAppointmentByID(id string) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

func (s *appointmentService) GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	if filters.Status != nil && !models.IsValidAppointmentStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrAppointmentValidation, *filters.Status)
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, 0, ErrInvalidDateRange
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	appts, total, err := s.appointmentRepo.GetAppointments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get appointments: %w", err)
	}
	return appts, total, nil
}

// UpdateAppointment edits a live appointment. Status moves only through
// ChangeStatus.
func (s *appointmentService) UpdateAppointment(id string, req UpdateAppointmentRequest) (*AppointmentResult, error) {
	appt, err := s.GetAppointmentByID(id)
	if err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, ErrAppointmentLocked
	}

	if req.ClientID != nil || req.ClientName != nil {
		if err := s.attachClient(appt, req.ClientID, req.ClientName); err != nil {
			return nil, err
		}
	}
	if req.ProfessionalID != nil {
		if err := s.checkProfessional(*req.ProfessionalID); err != nil {
			return nil, err
		}
		appt.ProfessionalID = *req.ProfessionalID
	}
	if req.Date != nil {
		if appt.Date, err = s.parseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.ServiceIDs != nil {
		appt.ServiceIDs = append([]string(nil), req.ServiceIDs...)
	}
	services, err := s.loadServices(s.db, appt.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if req.StartTime != nil {
		appt.StartTime = *req.StartTime
	}
	end := req.EndTime
	if end == nil && req.StartTime == nil && req.ServiceIDs == nil {
		end = &appt.EndTime
	}
	if appt.StartTime, appt.EndTime, err = resolveTimes(appt.StartTime, end, services); err != nil {
		return nil, err
	}

	if req.Discount != nil || req.ExtraAmount != nil || req.TotalAmount != nil || req.ServiceIDs != nil {
		discount, extra := appt.Discount.String(), appt.ExtraAmount.String()
		if req.Discount != nil {
			discount = *req.Discount
		}
		if req.ExtraAmount != nil {
			extra = *req.ExtraAmount
		}
		total, d, e, err := parseAmounts(req.TotalAmount, &discount, &extra)
		if err != nil {
			return nil, err
		}
		appt.Discount, appt.ExtraAmount = d, e
		if total != nil {
			appt.TotalAmount = *total
		} else {
			appt.TotalAmount = computeTotal(services, d, e)
		}
	}
	if req.PaymentMethod != nil {
		appt.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		appt.Notes = req.Notes
	}

	available, err := s.appointmentRepo.CheckProfessionalAvailability(s.db, appt.ProfessionalID, appt.Date, appt.StartTime, appt.EndTime, &appt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check professional availability: %w", err)
	}
	if !available {
		return nil, ErrProfessionalNotAvailable
	}
	if err := s.appointmentRepo.UpdateAppointment(s.db, appt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &AppointmentResult{Appointment: appt, Notices: clientLinkNotices(appt)}, nil
}

// ChangeStatus applies a guarded transition. Entering Concluído consumes
// package credits or awards a stamp and records the income, all in the same
// transaction as the status write.
func (s *appointmentService) ChangeStatus(id string, req ChangeStatusRequest) (*AppointmentResult, error) {
	if !models.IsValidAppointmentStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrAppointmentValidation, req.Status)
	}
	next := models.AppointmentStatus(req.Status)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	appt, err := s.appointmentRepo.GetAppointmentForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, appt.Status, next)
	}

	if req.PaymentMethod != nil {
		appt.PaymentMethod = req.PaymentMethod
		if err := s.appointmentRepo.UpdateAppointment(tx, appt); err != nil {
			return nil, fmt.Errorf("failed to save payment method: %w", err)
		}
	}

	var completedAt *time.Time
	if next == models.AppointmentStatusCompleted {
		now := time.Now().In(s.cfg.Location)
		completedAt = &now
	}
	if err := s.appointmentRepo.UpdateAppointmentStatus(tx, appt.ID, next, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appt.Status = next
	appt.CompletedAt = completedAt

	result := &AppointmentResult{Appointment: appt, Notices: []models.Notice{}}
	if next == models.AppointmentStatusCompleted {
		if err := s.completeAppointment(tx, appt, result); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit appointment status change: %w", err)
	}
	if result.Consumption != nil {
		metrics.RecordPackage(metrics.EventCreditConsumed, len(result.Consumption.Debits))
		metrics.RecordPackage(metrics.EventPackageUtilized, len(result.Consumption.Utilized))
	}
	utils.LogInfo("Appointment status changed", map[string]interface{}{"appointment_id": appt.ID, "status": next})
	return result, nil
}

// completeAppointment runs the completion side effects inside tx.
func (s *appointmentService) completeAppointment(tx repositories.SQLExecutor, appt *models.Appointment, result *AppointmentResult) error {
	client, warning, err := s.resolveClient(tx, appt)
	if err != nil {
		return err
	}

	if client == nil {
		metrics.RecordUnresolvedClient()
		utils.LogWarn("Completed appointment has no resolvable client", map[string]interface{}{
			"appointment_id": appt.ID, "client_name": appt.ClientName,
		})
		result.Notices = append(result.Notices, warning)
	} else {
		consumption := loyalty.ConsumeCredits(client.PurchasedPackages, appt.ServiceIDs, s.cfg.Today(), s.policy)
		if consumption.AnyConsumed() {
			if err := s.clientRepo.UpdatePackages(tx, client.ID, consumption.Packages); err != nil {
				return fmt.Errorf("failed to save package credits: %w", err)
			}
			client.PurchasedPackages = consumption.Packages
			for _, d := range consumption.Debits {
				result.Notices = append(result.Notices, models.NewNotice(models.NoticeInfo, models.NoticePackageCreditUsed,
					fmt.Sprintf("Crédito do pacote %s utilizado (restam %d)", d.PackageName, d.Remaining)))
			}
			for _, instID := range consumption.Utilized {
				inst := client.PurchasedPackages[client.PurchasedPackages.Find(instID)]
				result.Notices = append(result.Notices, models.NewNotice(models.NoticeInfo, models.NoticePackageUtilized,
					fmt.Sprintf("Pacote %s totalmente utilizado", inst.PackageName)))
			}
		} else {
			notice, err := awardStamp(tx, s.clientRepo, client)
			if err != nil {
				return err
			}
			result.Notices = append(result.Notices, notice)
		}
		summary := loyalty.Summarize(client.StampsEarned, client.MimosRedeemed)
		result.Client = client
		result.Loyalty = &summary
		result.Consumption = &consumption
	}

	if appt.TotalAmount.IsPositive() {
		if err := recordTransaction(tx, s.financeRepo, &models.FinancialTransaction{
			Description:   fmt.Sprintf("Atendimento - %s", appt.ClientName),
			Amount:        appt.TotalAmount,
			Date:          s.cfg.Today(),
			Category:      models.CategoryServicesRendered,
			Type:          models.TransactionIncome,
			PaymentMethod: appt.PaymentMethod,
			ReferenceID:   &appt.ID,
		}); err != nil {
			return err
		}
		result.Notices = append(result.Notices, models.NewNotice(models.NoticeSuccess, models.NoticeIncomeRecorded,
			fmt.Sprintf("Receita de R$ %s registrada", utils.FormatAmount(appt.TotalAmount))))
	}
	return nil
}

// resolveClient locks the appointment's client. A nil client comes with the
// warning to surface; only database failures are errors.
func (s *appointmentService) resolveClient(tx repositories.SQLExecutor, appt *models.Appointment) (*models.Client, models.Notice, error) {
	if appt.ClientID != nil {
		client, err := s.clientRepo.GetClientForUpdate(tx, *appt.ClientID)
		if err == nil {
			return client, models.Notice{}, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, models.Notice{}, fmt.Errorf("failed to load appointment client: %w", err)
		}
		return nil, models.NewNotice(models.NoticeWarning, models.NoticeClientNotFound,
			fmt.Sprintf("Cliente de %q não existe mais; fidelidade e pacotes não foram aplicados", appt.ClientName)), nil
	}

	matches, err := s.clientRepo.FindClientsByName(tx, appt.ClientName)
	if err != nil {
		return nil, models.Notice{}, fmt.Errorf("failed to match appointment client: %w", err)
	}
	switch len(matches) {
	case 1:
		client, err := s.clientRepo.GetClientForUpdate(tx, matches[0].ID)
		if err != nil {
			return nil, models.Notice{}, fmt.Errorf("failed to lock appointment client: %w", err)
		}
		return client, models.Notice{}, nil
	case 0:
		return nil, models.NewNotice(models.NoticeWarning, models.NoticeClientNotFound,
			fmt.Sprintf("Cliente %q não encontrado; fidelidade e pacotes não foram aplicados", appt.ClientName)), nil
	default:
		return nil, models.NewNotice(models.NoticeWarning, models.NoticeClientNotFound,
			fmt.Sprintf("Há %d clientes chamados %q; vincule o agendamento a um deles", len(matches), appt.ClientName)), nil
	}
}

func (s *appointmentService) DeleteAppointment(id string) error {
	if err := s.appointmentRepo.DeleteAppointment(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// CreateRecurring books the same slot on every generated date. Dates where the
// professional is busy are skipped and reported; the rest share one
// recurrence group and are written in one transaction.
func (s *appointmentService) CreateRecurring(req RecurringAppointmentRequest) (*RecurringResult, error) {
	template, err := s.buildAppointment(req.CreateAppointmentRequest)
	if err != nil {
		return nil, err
	}

	freq := scheduling.Frequency(strings.ToLower(strings.TrimSpace(req.Frequency)))
	var dates []time.Time
	switch {
	case req.Count != nil:
		dates, err = scheduling.RecurringDates(template.Date, freq, *req.Count, s.cfg.Schedule.MaxRecurrences)
	case req.Until != nil:
		until, perr := s.parseDate(*req.Until)
		if perr != nil {
			return nil, perr
		}
		dates, err = scheduling.RecurringDatesUntil(template.Date, until, freq, s.cfg.Schedule.MaxRecurrences)
	default:
		err = fmt.Errorf("%w: count or until is required", scheduling.ErrInvalidRecurrence)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppointmentValidation, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	groupID := uuid.NewString()
	result := &RecurringResult{RecurrenceGroupID: groupID, Created: []models.Appointment{}, Skipped: []string{}, Notices: clientLinkNotices(template)}
	for _, date := range dates {
		available, err := s.appointmentRepo.CheckProfessionalAvailability(tx, template.ProfessionalID, date, template.StartTime, template.EndTime, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check professional availability: %w", err)
		}
		day := date.Format("2006-01-02")
		if !available {
			result.Skipped = append(result.Skipped, day)
			result.Notices = append(result.Notices, models.NewNotice(models.NoticeWarning, models.NoticeOccurrenceSkipped,
				fmt.Sprintf("%s %s-%s já está ocupado; ocorrência ignorada", day, template.StartTime, template.EndTime)))
			continue
		}
		occurrence := *template
		occurrence.ID = ""
		occurrence.Date = date
		occurrence.ServiceIDs = append([]string(nil), template.ServiceIDs...)
		occurrence.RecurrenceGroupID = &groupID
		if err := s.appointmentRepo.CreateAppointment(tx, &occurrence); err != nil {
			return nil, fmt.Errorf("failed to create recurring appointment on %s: %w", day, err)
		}
		result.Created = append(result.Created, occurrence)
	}
	if len(result.Created) == 0 {
		return nil, ErrProfessionalNotAvailable
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recurring appointments: %w", err)
	}
	utils.LogInfo("Recurring appointments created", map[string]interface{}{
		"recurrence_group_id": groupID, "created": len(result.Created), "skipped": len(result.Skipped),
	})
	return result, nil
}

// openingHours prefers the salon settings and falls back to the configuration.
func (s *appointmentService) openingHours() (string, string) {
	opening, closing := s.cfg.Schedule.OpeningTime, s.cfg.Schedule.ClosingTime
	if setting, err := s.settingRepo.GetByKey(models.SettingOpeningTime); err == nil && setting.SettingValue != nil {
		if clock, err := scheduling.NormalizeClock(*setting.SettingValue); err == nil {
			opening = clock
		}
	}
	if setting, err := s.settingRepo.GetByKey(models.SettingClosingTime); err == nil && setting.SettingValue != nil {
		if clock, err := scheduling.NormalizeClock(*setting.SettingValue); err == nil {
			closing = clock
		}
	}
	return opening, closing
}

// FreeSlots lists the start/end pairs on the interval grid where the
// professional has nothing booked.
func (s *appointmentService) FreeSlots(professionalID, date string, durationMinutes int) ([]scheduling.TimeRange, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	if err := s.checkProfessional(professionalID); err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		durationMinutes = s.cfg.Schedule.SlotIntervalMinutes
	}

	appts, _, err := s.appointmentRepo.GetAppointments(models.AppointmentFilters{
		ProfessionalID: &professionalID,
		DateFrom:       &day,
		DateTo:         &day,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load professional agenda: %w", err)
	}
	busy := make([]scheduling.TimeRange, 0, len(appts))
	for _, a := range appts {
		if a.Status == models.AppointmentStatusCancelled {
			continue
		}
		busy = append(busy, scheduling.TimeRange{Start: a.StartTime, End: a.EndTime})
	}

	opening, closing := s.openingHours()
	slots, err := scheduling.FreeSlots(opening, closing, s.cfg.Schedule.SlotIntervalMinutes, durationMinutes, busy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppointmentValidation, err)
	}
	return slots, nil
}
