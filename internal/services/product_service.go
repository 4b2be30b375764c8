package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"salon_backend/internal/models"
	"salon_backend/internal/repositories"
	"salon_backend/pkg/utils"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductValidation  = errors.New("product data validation error")
	ErrInsufficientStock  = errors.New("insufficient stock for this adjustment")
	ErrProductSKUConflict = errors.New("a product with this SKU already exists")
)

type ProductRequest struct {
	Name              *string `json:"name"`
	SKU               *string `json:"sku"`
	Price             *string `json:"price"`
	Cost              *string `json:"cost"`
	Stock             *int    `json:"stock"` // only honoured on create
	LowStockThreshold *int    `json:"low_stock_threshold"`
}

type AdjustStockRequest struct {
	Delta  int     `json:"delta" binding:"required"`
	Reason *string `json:"reason"`
}

// ProductService manages the inventory of retail and back-bar products.
type ProductService interface {
	CreateProduct(req ProductRequest) (*models.Product, error)
	GetProductByID(id string) (*models.Product, error)
	GetProducts(lowStockOnly bool) ([]models.Product, error)
	UpdateProduct(id string, req ProductRequest) (*models.Product, error)
	AdjustStock(id string, req AdjustStockRequest) (*models.Product, error)
	DeleteProduct(id string) error
}

type productService struct {
	productRepo repositories.ProductRepository
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(repo repositories.ProductRepository, db *sql.DB) ProductService {
	return &productService{productRepo: repo, db: db}
}

func applyProductRequest(p *models.Product, req ProductRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrProductValidation)
	}
	if req.SKU != nil {
		if sku := strings.TrimSpace(*req.SKU); sku != "" {
			p.SKU = &sku
		} else {
			p.SKU = nil
		}
	}
	if req.Price != nil {
		price, err := utils.ParseAmount(*req.Price)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("%w: invalid price", ErrProductValidation)
		}
		p.Price = price
	}
	if req.Cost != nil {
		cost, err := utils.ParseOptionalAmount(req.Cost)
		if err != nil || (cost != nil && cost.IsNegative()) {
			return fmt.Errorf("%w: invalid cost", ErrProductValidation)
		}
		p.Cost = cost
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return fmt.Errorf("%w: low_stock_threshold cannot be negative", ErrProductValidation)
		}
		p.LowStockThreshold = req.LowStockThreshold
	}
	return nil
}

func mapProductError(err error, action string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrProductSKUConflict
	case errors.Is(err, repositories.ErrInsufficientStock):
		return ErrInsufficientStock
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (s *productService) CreateProduct(req ProductRequest) (*models.Product, error) {
	p := &models.Product{}
	if err := applyProductRequest(p, req); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrProductValidation)
		}
		p.Stock = *req.Stock
	}
	if err := s.productRepo.CreateProduct(s.db, p); err != nil {
		return nil, mapProductError(err, "create product")
	}
	return p, nil
}

func (s *productService) GetProductByID(id string) (*models.Product, error) {
	p, err := s.productRepo.GetProductByID(id)
	if err != nil {
		return nil, mapProductError(err, "get product")
	}
	return p, nil
}

func (s *productService) GetProducts(lowStockOnly bool) ([]models.Product, error) {
	list, err := s.productRepo.GetProducts(s.db, lowStockOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return list, nil
}

func (s *productService) UpdateProduct(id string, req ProductRequest) (*models.Product, error) {
	p, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	if err := applyProductRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateProduct(s.db, p); err != nil {
		return nil, mapProductError(err, "update product")
	}
	return p, nil
}

// AdjustStock moves stock by delta; stock never goes below zero.
func (s *productService) AdjustStock(id string, req AdjustStockRequest) (*models.Product, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrProductValidation)
	}
	stock, err := s.productRepo.AdjustStock(s.db, id, req.Delta)
	if err != nil {
		return nil, mapProductError(err, "adjust stock")
	}
	fields := map[string]interface{}{"product_id": id, "delta": req.Delta, "stock": stock}
	if req.Reason != nil {
		fields["reason"] = *req.Reason
	}
	utils.LogInfo("Product stock adjusted", fields)

	p, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	if p.IsLowStock() {
		utils.LogWarn("Product stock is low", map[string]interface{}{"product_id": id, "stock": p.Stock})
	}
	return p, nil
}

func (s *productService) DeleteProduct(id string) error {
	if err := s.productRepo.DeleteProduct(s.db, id); err != nil {
		return mapProductError(err, "delete product")
	}
	return nil
}
