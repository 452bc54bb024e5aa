package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type ProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Stock        *int    `json:"stock" binding:"required"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	Unit         string  `json:"unit"`
	Category     string  `json:"category"`
	ExpiredDate  string  `json:"expired_date"` // YYYY-MM-DD, optional
}

func parseExpiredDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// --- GET: List products with pagination and search ---
func GetProducts(c *gin.Context) {
	page, limit := parsePagination(c)
	search := c.Query("search")

	query := database.DB.Model(&models.Product{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch products"})
		return
	}

	var products []models.Product
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       products,
		"pagination": buildPagination(total, page, limit),
	})
}

// --- POST: Add a new product ---
func AddProduct(c *gin.Context) {
	var input ProductRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and stock are required"})
		return
	}
	if *input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Stock cannot be negative"})
		return
	}
	expired, ok := parseExpiredDate(input.ExpiredDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "expired_date must be YYYY-MM-DD"})
		return
	}

	product := models.Product{
		Name:         input.Name,
		Stock:        *input.Stock,
		CostPrice:    input.CostPrice,
		SellingPrice: input.SellingPrice,
		Unit:         input.Unit,
		Category:     input.Category,
		ExpiredDate:  expired,
	}
	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// --- PUT: Update an existing product ---
// Direct stock edits land here too; the adjustment endpoint is the one
// that writes ledger rows.
func UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID"})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	var input ProductRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and stock are required"})
		return
	}
	if *input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Stock cannot be negative"})
		return
	}
	expired, ok := parseExpiredDate(input.ExpiredDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "expired_date must be YYYY-MM-DD"})
		return
	}

	product.Name = input.Name
	product.Stock = *input.Stock
	product.CostPrice = input.CostPrice
	product.SellingPrice = input.SellingPrice
	product.Unit = input.Unit
	product.Category = input.Category
	product.ExpiredDate = expired

	if err := database.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// --- DELETE: Remove a product ---
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}

	if err := database.DB.Delete(&product).Error; err != nil {
		// Usually a foreign key constraint from past sales
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not delete product. It might be linked to past sales."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
