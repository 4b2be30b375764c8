package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salon_backend/internal/models"

	"github.com/google/uuid"
)

const productColumns = `id, name, sku, price, cost, stock, low_stock_threshold, created_at, updated_at`

// ErrInsufficientStock is returned when an adjustment would make stock negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository defines the interface for inventory operations.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, p *models.Product) error
	GetProductByID(id string) (*models.Product, error)
	GetProducts(executor SQLExecutor, lowStockOnly bool) ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, p *models.Product) error
	// AdjustStock adds delta (negative to remove) and returns the new stock.
	AdjustStock(executor SQLExecutor, id string, delta int) (int, error)
	DeleteProduct(executor SQLExecutor, id string) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.Cost, &p.Stock, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) CreateProduct(executor SQLExecutor, p *models.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := executor.Exec(query, p.ID, p.Name, p.SKU, p.Price, p.Cost, p.Stock, p.LowStockThreshold, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return classify(err, "creating product")
	}
	return nil
}

func (r *productRepository) GetProductByID(id string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product %s: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *productRepository) GetProducts(executor SQLExecutor, lowStockOnly bool) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if lowStockOnly {
		query += ` WHERE low_stock_threshold IS NOT NULL AND stock <= low_stock_threshold`
	}
	rows, err := executor.Query(query + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return out, nil
}

// UpdateProduct writes descriptive fields; stock only moves through AdjustStock.
func (r *productRepository) UpdateProduct(executor SQLExecutor, p *models.Product) error {
	query := `UPDATE products SET name = $1, sku = $2, price = $3, cost = $4, low_stock_threshold = $5, updated_at = $6 WHERE id = $7`
	p.UpdatedAt = time.Now()
	result, err := executor.Exec(query, p.Name, p.SKU, p.Price, p.Cost, p.LowStockThreshold, p.UpdatedAt, p.ID)
	if err != nil {
		return classify(err, "updating product "+p.ID)
	}
	return expectOneRow(result, "updating product "+p.ID)
}

func (r *productRepository) AdjustStock(executor SQLExecutor, id string, delta int) (int, error) {
	query := `UPDATE products SET stock = stock + $1, updated_at = $2
	          WHERE id = $3 AND stock + $1 >= 0
	          RETURNING stock`
	var stock int
	err := executor.QueryRow(query, delta, time.Now(), id).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: adjusting stock of product %s: %v", ErrDatabaseError, id, err)
	}

	// No row updated: either the product is missing or the guard refused.
	var exists bool
	if err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("%w: checking product %s: %v", ErrDatabaseError, id, err)
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrInsufficientStock
}

func (r *productRepository) DeleteProduct(executor SQLExecutor, id string) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return classify(err, "deleting product "+id)
	}
	return expectOneRow(result, "deleting product "+id)
}
