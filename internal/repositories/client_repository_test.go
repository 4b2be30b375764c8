package repositories

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientRowColumns() []string {
	return strings.Split(strings.ReplaceAll(clientColumns, " ", ""), ",")
}

func TestGetClientForUpdateDecodesPackages(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	packages := `[{"id":"i1","package_id":"p1","package_name":"Hidratação x4","purchase_date":"2026-03-01T00:00:00Z",
		"paid_price":"120","status":"Ativo","services":[{"service_id":"s1","total_quantity":4,"remaining_quantity":3}]}]`

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM clients WHERE id = $1 FOR UPDATE`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(clientRowColumns()).
			AddRow("c1", "Ana", nil, "11999990000", nil, nil, 7, 1, []byte(packages), now, now))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	client, err := repo.GetClientForUpdate(tx, "c1")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Equal(t, 7, client.StampsEarned)
	assert.Nil(t, client.BirthDate)
	require.Len(t, client.PurchasedPackages, 1)
	inst := client.PurchasedPackages[0]
	assert.Equal(t, models.PackageStatusActive, inst.Status)
	assert.Equal(t, 3, inst.Services[0].RemainingQuantity)
	assert.Equal(t, "120", inst.PaidPrice.String())
}

func TestGetClientByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM clients WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetClientByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateClientMapsUniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO clients`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "clients_email_key", Message: "duplicate key"})

	client := &models.Client{Name: "Ana"}
	err := repo.CreateClient(db, client)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NotEmpty(t, client.ID)
	assert.NotNil(t, client.PurchasedPackages)
}

func TestUpdateLoyalty(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     error
	}{
		{name: "updated", affected: 1},
		{name: "missing client", affected: 0, want: ErrNotFound},
		{name: "driver failure", execErr: errors.New("connection reset"), want: ErrDatabaseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewClientRepository(db)

			exp := mock.ExpectExec(regexp.QuoteMeta(`UPDATE clients SET stamps_earned = $1, mimos_redeemed = $2`)).
				WithArgs(12, 3, sqlmock.AnyArg(), "c1")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := repo.UpdateLoyalty(db, "c1", 12, 3)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestUpdatePackagesWritesJSON(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)
	pkgs := models.PackageInstances{{ID: "i1", Status: models.PackageStatusUsed}}
	encoded, err := pkgs.Value()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE clients SET purchased_packages = $1`)).
		WithArgs(encoded, sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePackages(db, "c1", pkgs))
}

func TestGetClientsSearchAndPaging(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)
	now := time.Now()
	search := " ana "

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE (name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1) ORDER BY name ASC LIMIT $2 OFFSET $3`)).
		WithArgs("%ana%", 10, 10).
		WillReturnRows(sqlmock.NewRows(append(clientRowColumns(), "total_count")).
			AddRow("c1", "Ana", nil, nil, nil, nil, 0, 0, []byte(`[]`), now, now, 11))

	clients, total, err := repo.GetClients(2, 10, &search)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, clients, 1)
	assert.Empty(t, clients[0].PurchasedPackages)
}
