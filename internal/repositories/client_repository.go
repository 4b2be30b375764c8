package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
)

const clientColumns = `id, name, email, phone, birth_date, notes, stamps_earned, mimos_redeemed, purchased_packages, created_at, updated_at`

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(executor SQLExecutor, client *models.Client) error
	GetClientByID(id string) (*models.Client, error)
	// GetClientForUpdate locks the client row for the rest of the transaction.
	GetClientForUpdate(executor SQLExecutor, id string) (*models.Client, error)
	FindClientsByName(executor SQLExecutor, name string) ([]models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	ListAllClients(executor SQLExecutor) ([]models.Client, error)
	UpdateClient(executor SQLExecutor, client *models.Client) error
	UpdateLoyalty(executor SQLExecutor, id string, stampsEarned, mimosRedeemed int) error
	UpdatePackages(executor SQLExecutor, id string, packages models.PackageInstances) error
	DeleteClient(executor SQLExecutor, id string) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

func scanClient(row scanner) (*models.Client, error) {
	var client models.Client
	var dob sql.NullTime
	err := row.Scan(
		&client.ID, &client.Name, &client.Email, &client.Phone, &dob, &client.Notes,
		&client.StampsEarned, &client.MimosRedeemed, &client.PurchasedPackages,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		client.BirthDate = &dob.Time
	}
	if client.PurchasedPackages == nil {
		client.PurchasedPackages = models.PackageInstances{}
	}
	return &client, nil
}

func nullDate(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}

// CreateClient inserts a new client. Id and timestamps are generated when empty,
// which lets a restore keep the exported values.
func (r *clientRepository) CreateClient(executor SQLExecutor, client *models.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	currentTime := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = currentTime
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = currentTime
	}
	if client.PurchasedPackages == nil {
		client.PurchasedPackages = models.PackageInstances{}
	}

	_, err := executor.Exec(query,
		client.ID, client.Name, client.Email, client.Phone, nullDate(client.BirthDate), client.Notes,
		client.StampsEarned, client.MimosRedeemed, client.PurchasedPackages,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return classify(err, "creating client")
	}
	return nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClient(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting client by ID %s: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

func (r *clientRepository) GetClientForUpdate(executor SQLExecutor, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 FOR UPDATE`
	client, err := scanClient(executor.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking client %s: %v", ErrDatabaseError, id, err)
	}
	return client, nil
}

// FindClientsByName matches the whole name case-insensitively and locks the
// rows it returns. Used only for appointments that predate client ids.
func (r *clientRepository) FindClientsByName(executor SQLExecutor, name string) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE LOWER(TRIM(name)) = LOWER(TRIM($1)) ORDER BY created_at FOR UPDATE`
	rows, err := executor.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("%w: finding clients by name: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

// GetClients retrieves a list of clients with pagination and optional search.
func (r *clientRepository) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() AS total_count FROM clients`)

	var args []interface{}
	argCount := 1
	if searchTerm != nil && strings.TrimSpace(*searchTerm) != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE (name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+strings.TrimSpace(*searchTerm)+"%")
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY name ASC")
	limit, args := pageClause(page, pageSize, argCount, args)
	queryBuilder.WriteString(limit)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	totalCount := 0
	for rows.Next() {
		var client models.Client
		var dob sql.NullTime
		if err := rows.Scan(
			&client.ID, &client.Name, &client.Email, &client.Phone, &dob, &client.Notes,
			&client.StampsEarned, &client.MimosRedeemed, &client.PurchasedPackages,
			&client.CreatedAt, &client.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		if dob.Valid {
			client.BirthDate = &dob.Time
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

func (r *clientRepository) ListAllClients(executor SQLExecutor) ([]models.Client, error) {
	rows, err := executor.Query(`SELECT ` + clientColumns + ` FROM clients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, nil
}

// UpdateClient writes profile fields only. Loyalty counters and packages have
// their own writes so a profile edit never clobbers them.
func (r *clientRepository) UpdateClient(executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            name = $1, email = $2, phone = $3, birth_date = $4, notes = $5, updated_at = $6
	          WHERE id = $7`

	client.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		client.Name, client.Email, client.Phone, nullDate(client.BirthDate), client.Notes,
		client.UpdatedAt, client.ID,
	)
	if err != nil {
		return classify(err, "updating client "+client.ID)
	}
	return expectOneRow(result, "updating client "+client.ID)
}

func (r *clientRepository) UpdateLoyalty(executor SQLExecutor, id string, stampsEarned, mimosRedeemed int) error {
	query := `UPDATE clients SET stamps_earned = $1, mimos_redeemed = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, stampsEarned, mimosRedeemed, time.Now(), id)
	if err != nil {
		return classify(err, "updating loyalty of client "+id)
	}
	return expectOneRow(result, "updating loyalty of client "+id)
}

func (r *clientRepository) UpdatePackages(executor SQLExecutor, id string, packages models.PackageInstances) error {
	query := `UPDATE clients SET purchased_packages = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, packages, time.Now(), id)
	if err != nil {
		return classify(err, "updating packages of client "+id)
	}
	return expectOneRow(result, "updating packages of client "+id)
}

// DeleteClient removes a client from the database.
func (r *clientRepository) DeleteClient(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting client "+id)
	}
	return expectOneRow(result, "deleting client "+id)
}
