package services

import (
	"fmt"
	"testing"
	"time"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	users map[string]*models.User
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: (constraint: users_username_key)", repositories.ErrDuplicateKey)
		}
		if u.Email != nil && user.Email != nil && *u.Email == *user.Email {
			return fmt.Errorf("%w: (constraint: users_email_key)", repositories.ErrDuplicateKey)
		}
	}
	user.ID = uuid.NewString()
	user.IsActive = true
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeAuthRepo) FindUserByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) FindUserByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeAuthRepo) CountUsers(_ repositories.SQLExecutor) (int, error) {
	return len(r.users), nil
}

func newAuthFixture() (AuthService, *fakeAuthRepo, *utils.TokenManager) {
	repo := &fakeAuthRepo{users: map[string]*models.User{}}
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(repo, nil, tokens), repo, tokens
}

func registration(username, email string) RegisterUserRequest {
	return RegisterUserRequest{Username: username, Email: email, Password: "s3nha-forte", FullName: "Maria Silva"}
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	first, err := svc.RegisterUser(registration("maria", "maria@salao.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Empty(t, first.PasswordHash)

	stored := repo.users[first.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3nha-forte")))

	second, err := svc.RegisterUser(registration("joana", "joana@salao.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, second.Role)
}

func TestRegisterRejectsDuplicatesAndUnknownRoles(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.RegisterUser(registration("maria", "maria@salao.com"))
	require.NoError(t, err)

	_, err = svc.RegisterUser(registration("maria", "outra@salao.com"))
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.RegisterUser(registration("outra", "maria@salao.com"))
	assert.ErrorIs(t, err, ErrEmailExists)

	req := registration("ana", "ana@salao.com")
	req.Role = "gerente"
	_, err = svc.RegisterUser(req)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestBootstrapOnlyOnEmptyInstall(t *testing.T) {
	svc, _, _ := newAuthFixture()

	admin, err := svc.Bootstrap(registration("dona", "dona@salao.com"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = svc.Bootstrap(registration("intruso", "x@salao.com"))
	assert.ErrorIs(t, err, ErrAlreadyBootstrapped)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, repo, tokens := newAuthFixture()
	user, err := svc.RegisterUser(registration("maria", "maria@salao.com"))
	require.NoError(t, err)

	resp, err := svc.LoginUser(LoginRequest{Username: " maria ", Password: "s3nha-forte"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = svc.LoginUser(LoginRequest{Username: "maria", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginUser(LoginRequest{Username: "ninguem", Password: "s3nha-forte"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.users[user.ID].IsActive = false
	_, err = svc.LoginUser(LoginRequest{Username: "maria", Password: "s3nha-forte"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserProfile(t *testing.T) {
	svc, _, _ := newAuthFixture()
	user, err := svc.RegisterUser(registration("maria", "maria@salao.com"))
	require.NoError(t, err)

	got, err := svc.GetUserProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria", got.Username)

	_, err = svc.GetUserProfile("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
