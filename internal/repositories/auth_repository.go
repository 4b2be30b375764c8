package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, username, password_hash, email, full_name, role, is_active, created_at, updated_at`

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) error
	FindUserByUsername(username string) (*models.User, error)
	FindUserByID(userID string) (*models.User, error)
	CountUsers(executor SQLExecutor) (int, error)
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. PasswordHash must already be hashed.
// IsActive is forced to true for new users.
func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	currentTime := time.Now()
	user.IsActive = true
	user.CreatedAt = currentTime
	user.UpdatedAt = currentTime

	_, err := executor.Exec(query,
		user.ID, user.Username, user.PasswordHash, user.Email, user.FullName, user.Role,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating user")
	}
	return nil
}

// FindUserByUsername retrieves a user, password hash included, by username.
func (r *authRepository) FindUserByUsername(username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

// FindUserByID retrieves a user by ID. The password hash is cleared; this is
// for profile data, not credential checks.
func (r *authRepository) FindUserByID(userID string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %s: %v", ErrDatabaseError, userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (r *authRepository) CountUsers(executor SQLExecutor) (int, error) {
	var n int
	if err := executor.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return n, nil
}
