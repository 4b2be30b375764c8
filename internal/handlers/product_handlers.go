package handlers

import (
	"errors"
	"net/http"

	"salon_backend/internal/models"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the inventory service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateProduct: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(req)
	if err != nil {
		utils.LogError(err, "CreateProduct: Error from productService.CreateProduct")
		respondProductError(c, err, "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	list, err := h.productService.GetProducts(queryBool(c, "low_stock", false))
	if err != nil {
		utils.LogError(err, "GetProducts: Error from productService.GetProducts")
		utils.RespondInternalError(c, "Failed to fetch products.")
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id := c.Param("id")
	product, err := h.productService.GetProductByID(id)
	if err != nil {
		utils.LogError(err, "GetProductByID: Error for ID "+id)
		respondProductError(c, err, "Failed to fetch product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateProduct: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(id, req)
	if err != nil {
		utils.LogError(err, "UpdateProduct: Error for ID "+id)
		respondProductError(c, err, "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

// AdjustStock applies a signed stock movement.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id := c.Param("id")
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AdjustStock: Failed to bind JSON for ID "+id)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.productService.AdjustStock(id, req)
	if err != nil {
		utils.LogError(err, "AdjustStock: Error for ID "+id)
		respondProductError(c, err, "Failed to adjust stock.")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.productService.DeleteProduct(id); err != nil {
		utils.LogError(err, "DeleteProduct: Error for ID "+id)
		respondProductError(c, err, "Failed to delete product.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func respondProductError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondNotFound(c, "Product not found.", err)
	case errors.Is(err, services.ErrProductSKUConflict):
		utils.RespondConflict(c, "A product with this SKU already exists.", err)
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondConflict(c, "Insufficient stock for this adjustment.", err)
	case errors.Is(err, services.ErrProductValidation), errors.Is(err, utils.ErrInvalidAmount):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}
