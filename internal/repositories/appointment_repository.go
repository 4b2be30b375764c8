package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const appointmentColumns = `id, client_id, client_name, service_ids, professional_id, date, start_time, end_time, status,
	total_amount, discount, extra_amount, payment_method, notes, recurrence_group_id, completed_at, created_at, updated_at`

const dateLayout = "2006-01-02"

// AppointmentRepository defines the interface for appointment-related database operations.
type AppointmentRepository interface {
	CreateAppointment(executor SQLExecutor, appt *models.Appointment) error
	GetAppointmentByID(id string) (*models.Appointment, error)
	// GetAppointmentForUpdate locks the appointment row for the rest of the transaction.
	GetAppointmentForUpdate(executor SQLExecutor, id string) (*models.Appointment, error)
	GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error)
	ListAllAppointments(executor SQLExecutor) ([]models.Appointment, error)
	UpdateAppointment(executor SQLExecutor, appt *models.Appointment) error
	UpdateAppointmentStatus(executor SQLExecutor, id string, status models.AppointmentStatus, completedAt *time.Time) error
	DeleteAppointment(executor SQLExecutor, id string) error
	// CheckProfessionalAvailability returns true when no live appointment of the
	// professional overlaps [startTime, endTime) on date.
	CheckProfessionalAvailability(executor SQLExecutor, professionalID string, date time.Time, startTime, endTime string, excludeID *string) (bool, error)
}

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func scanAppointment(row scanner, extra ...interface{}) (*models.Appointment, error) {
	var a models.Appointment
	var serviceIDs pq.StringArray
	var completedAt sql.NullTime
	dest := []interface{}{
		&a.ID, &a.ClientID, &a.ClientName, &serviceIDs, &a.ProfessionalID, &a.Date, &a.StartTime, &a.EndTime, &a.Status,
		&a.TotalAmount, &a.Discount, &a.ExtraAmount, &a.PaymentMethod, &a.Notes, &a.RecurrenceGroupID, &completedAt,
		&a.CreatedAt, &a.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.ServiceIDs = []string(serviceIDs)
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

// CreateAppointment inserts a new appointment.
func (r *appointmentRepository) CreateAppointment(executor SQLExecutor, appt *models.Appointment) error {
	query := `INSERT INTO appointments (` + appointmentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	currentTime := time.Now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = currentTime
	}
	if appt.UpdatedAt.IsZero() {
		appt.UpdatedAt = currentTime
	}
	if appt.Status == "" {
		appt.Status = models.AppointmentStatusScheduled
	}

	_, err := executor.Exec(query,
		appt.ID, appt.ClientID, appt.ClientName, pq.Array(appt.ServiceIDs), appt.ProfessionalID,
		appt.Date.Format(dateLayout), appt.StartTime, appt.EndTime, appt.Status,
		appt.TotalAmount, appt.Discount, appt.ExtraAmount, appt.PaymentMethod, appt.Notes,
		appt.RecurrenceGroupID, appt.CompletedAt, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating appointment")
	}
	return nil
}

// GetAppointmentByID retrieves an appointment by its ID.
func (r *appointmentRepository) GetAppointmentByID(id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting appointment by ID %s: %v", ErrDatabaseError, id, err)
	}
	return appt, nil
}

func (r *appointmentRepository) GetAppointmentForUpdate(executor SQLExecutor, id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`
	appt, err := scanAppointment(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking appointment %s: %v", ErrDatabaseError, id, err)
	}
	return appt, nil
}

// GetAppointments lists appointments ordered by date and start time.
// A PageSize of zero returns every match.
func (r *appointmentRepository) GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + appointmentColumns + `, COUNT(*) OVER() AS total_count FROM appointments`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.ProfessionalID != nil {
		conditions = append(conditions, fmt.Sprintf("professional_id = $%d", argCount))
		args = append(args, *filters.ProfessionalID)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argCount))
		args = append(args, filters.DateFrom.Format(dateLayout))
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argCount))
		args = append(args, filters.DateTo.Format(dateLayout))
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY date ASC, start_time ASC")
	limit, args := pageClause(filters.Page, filters.PageSize, argCount, args)
	queryBuilder.WriteString(limit)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	totalCount := 0
	for rows.Next() {
		appt, err := scanAppointment(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, totalCount, nil
}

func (r *appointmentRepository) ListAllAppointments(executor SQLExecutor) ([]models.Appointment, error) {
	rows, err := executor.Query(`SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date, start_time`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, nil
}

// UpdateAppointment writes the editable fields. Status has its own write.
func (r *appointmentRepository) UpdateAppointment(executor SQLExecutor, appt *models.Appointment) error {
	query := `UPDATE appointments SET
	            client_id = $1, client_name = $2, service_ids = $3, professional_id = $4, date = $5,
	            start_time = $6, end_time = $7, total_amount = $8, discount = $9, extra_amount = $10,
	            payment_method = $11, notes = $12, updated_at = $13
	          WHERE id = $14`

	appt.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		appt.ClientID, appt.ClientName, pq.Array(appt.ServiceIDs), appt.ProfessionalID, appt.Date.Format(dateLayout),
		appt.StartTime, appt.EndTime, appt.TotalAmount, appt.Discount, appt.ExtraAmount,
		appt.PaymentMethod, appt.Notes, appt.UpdatedAt, appt.ID,
	)
	if err != nil {
		return classify(err, "updating appointment "+appt.ID)
	}
	return expectOneRow(result, "updating appointment "+appt.ID)
}

func (r *appointmentRepository) UpdateAppointmentStatus(executor SQLExecutor, id string, status models.AppointmentStatus, completedAt *time.Time) error {
	query := `UPDATE appointments SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, status, completedAt, time.Now(), id)
	if err != nil {
		return classify(err, "updating status of appointment "+id)
	}
	return expectOneRow(result, "updating status of appointment "+id)
}

// DeleteAppointment removes an appointment from the database.
func (r *appointmentRepository) DeleteAppointment(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting appointment "+id)
	}
	return expectOneRow(result, "deleting appointment "+id)
}

// CheckProfessionalAvailability compares HH:MM strings, which order correctly
// because they are zero padded.
func (r *appointmentRepository) CheckProfessionalAvailability(executor SQLExecutor, professionalID string, date time.Time, startTime, endTime string, excludeID *string) (bool, error) {
	query := `SELECT COUNT(*) FROM appointments
	          WHERE professional_id = $1 AND date = $2 AND status <> $3
	            AND start_time < $4 AND end_time > $5`
	args := []interface{}{professionalID, date.Format(dateLayout), models.AppointmentStatusCancelled, endTime, startTime}
	if excludeID != nil {
		query += ` AND id <> $6`
		args = append(args, *excludeID)
	}

	var count int
	if err := executor.QueryRow(query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: checking availability of professional %s: %v", ErrDatabaseError, professionalID, err)
	}
	return count == 0, nil
}
