package repositories

import (
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appointmentRowColumns() []string {
	cols := strings.Split(appointmentColumns, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func TestCheckProfessionalAvailability(t *testing.T) {
	date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		excludeID *string
		count     int
		want      bool
	}{
		{name: "free", count: 0, want: true},
		{name: "overlap", count: 1, want: false},
		{name: "ignores itself", excludeID: func() *string { s := "a1"; return &s }(), count: 0, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewAppointmentRepository(db)

			args := []driver.Value{"pro-1", "2026-04-10", models.AppointmentStatusCancelled, "11:00", "10:00"}
			query := `AND start_time < $4 AND end_time > $5`
			if tt.excludeID != nil {
				args = append(args, *tt.excludeID)
				query += ` AND id <> $6`
			}
			mock.ExpectQuery(regexp.QuoteMeta(query)).
				WithArgs(args...).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			ok, err := repo.CheckProfessionalAvailability(db, "pro-1", date, "10:00", "11:00", tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGetAppointmentsBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	pro := "pro-1"
	status := string(models.AppointmentStatusCompleted)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE professional_id = $1 AND date >= $2 AND date <= $3 AND status = $4 ORDER BY date ASC, start_time ASC LIMIT $5`)).
		WithArgs(pro, "2026-04-01", "2026-04-30", status, 50).
		WillReturnRows(sqlmock.NewRows(append(appointmentRowColumns(), "total_count")).
			AddRow("a1", "c1", "Ana", "{s-cut,s-hidra}", pro, from, "10:00", "11:15", status,
				"140.00", "0", "0", "pix", nil, nil, now, now, now, 1))

	appts, total, err := repo.GetAppointments(models.AppointmentFilters{
		ProfessionalID: &pro, DateFrom: &from, DateTo: &to, Status: &status, Page: 1, PageSize: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, appts, 1)
	a := appts[0]
	assert.Equal(t, []string{"s-cut", "s-hidra"}, a.ServiceIDs)
	assert.Equal(t, models.AppointmentStatusCompleted, a.Status)
	assert.True(t, a.TotalAmount.Equal(decimal.RequireFromString("140")))
	require.NotNil(t, a.CompletedAt)
	require.NotNil(t, a.ClientID)
	assert.Equal(t, "c1", *a.ClientID)
}

func TestUpdateAppointmentStatusNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE appointments SET status = $1, completed_at = $2`)).
		WithArgs(models.AppointmentStatusCancelled, nil, sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAppointmentStatus(db, "gone", models.AppointmentStatusCancelled, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
