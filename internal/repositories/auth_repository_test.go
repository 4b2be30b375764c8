package repositories

import (
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

func TestCreateUserDuplicateEmailKeepsConstraint(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key", Message: "duplicate key value"})

	err := NewAuthRepository(db).CreateUser(db, &models.User{Username: "maria", Role: models.RoleStaff})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestFindUserByIDClearsPasswordHash(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	cols := strings.Split(strings.ReplaceAll(userColumns, " ", ""), ",")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "maria", "$2a$10$hash", "maria@salao.com", "Maria", models.RoleAdmin, true, now, now))

	user, err := NewAuthRepository(db).FindUserByID("u1")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestCountUsers(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewAuthRepository(db).CountUsers(db)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
