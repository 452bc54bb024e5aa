package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errInsufficientStock = errors.New("insufficient stock")
	errProductNotFound   = errors.New("product not found")
)

type AdjustStockRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Type      string `json:"type" binding:"required"` // 'add' or 'reduce'
	Quantity  int    `json:"quantity" binding:"required"`
	Note      string `json:"note"`
}

// --- POST: Adjust stock up or down, with a ledger entry ---
// The stock write and the history append happen in one transaction: a
// product's stock never changes without a matching ledger row.
func AdjustStock(c *gin.Context) {
	var input AdjustStockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId, type and quantity are required"})
		return
	}
	if input.Type != "add" && input.Type != "reduce" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "type must be 'add' or 'reduce'"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "quantity must be greater than zero"})
		return
	}

	var newStock int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errProductNotFound
			}
			return err
		}

		// Apply the delta as a single conditional UPDATE. Two concurrent
		// reductions can both read the same pre-decrement value, but only
		// updates that keep stock non-negative take effect.
		change := input.Quantity
		if input.Type == "reduce" {
			change = -input.Quantity
		}

		var result *gorm.DB
		if input.Type == "reduce" {
			result = tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, input.Quantity).
				Update("stock", gorm.Expr("stock - ?", input.Quantity))
		} else {
			result = tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock + ?", input.Quantity))
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errInsufficientStock
		}

		// Re-read inside the transaction to ledger the exact before/after pair
		if err := tx.First(&product, input.ProductID).Error; err != nil {
			return err
		}
		newStock = product.Stock

		return tx.Create(&models.InventoryHistory{
			ProductID:      product.ID,
			Type:           models.HistoryAdjustment,
			QuantityChange: change,
			PreviousStock:  newStock - change,
			NewStock:       newStock,
			Note:           input.Note,
		}).Error
	})

	switch {
	case errors.Is(err, errProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case errors.Is(err, errInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to adjust stock"})
	default:
		c.JSON(http.StatusOK, gin.H{"newStock": newStock})
	}
}

type OpnameItem struct {
	ID          uint `json:"id" binding:"required"`
	SystemStock int  `json:"system_stock"`
	ActualStock int  `json:"actual_stock"`
}

type StockOpnameRequest struct {
	Items []OpnameItem `json:"items" binding:"required"`
	Note  string       `json:"note"`
}

// --- POST: Stock opname (physical count reconciliation) ---
// Each differing item gets an absolute stock correction plus an 'opname'
// ledger row; matching items are no-ops. The whole batch is one
// transaction, so a single bad item rolls back every correction.
//
// The caller supplies system_stock from its earlier read; it is trusted
// as-is rather than re-checked against the current value, so two opnames
// racing on the same product can overwrite each other.
func StockOpname(c *gin.Context) {
	var input StockOpnameRequest
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "At least one item is required"})
		return
	}
	for _, item := range input.Items {
		if item.ActualStock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "actual_stock cannot be negative"})
			return
		}
	}

	var corrected int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range input.Items {
			if item.ActualStock == item.SystemStock {
				continue // counted stock matches, nothing to correct
			}

			var product models.Product
			if err := tx.First(&product, item.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", errProductNotFound, item.ID)
				}
				return err
			}

			if err := tx.Model(&product).Update("stock", item.ActualStock).Error; err != nil {
				return err
			}

			if err := tx.Create(&models.InventoryHistory{
				ProductID:      product.ID,
				Type:           models.HistoryOpname,
				QuantityChange: item.ActualStock - item.SystemStock,
				PreviousStock:  item.SystemStock,
				NewStock:       item.ActualStock,
				Note:           input.Note,
			}).Error; err != nil {
				return err
			}
			corrected++
		}
		return nil
	})

	switch {
	case errors.Is(err, errProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit stock opname"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Stock opname submitted successfully", "corrected": corrected})
	}
}

// --- GET: Inventory history ledger (?productId= to filter) ---
func GetInventoryHistory(c *gin.Context) {
	page, limit := parsePagination(c)

	query := database.DB.Model(&models.InventoryHistory{})
	if raw := c.Query("productId"); raw != "" {
		productID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid productId"})
			return
		}
		query = query.Where("product_id = ?", productID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch inventory history"})
		return
	}

	var entries []models.InventoryHistory
	if err := query.Order("id desc").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch inventory history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       entries,
		"pagination": buildPagination(total, page, limit),
	})
}
