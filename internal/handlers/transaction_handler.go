package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ID       uint    `json:"id" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Price    float64 `json:"price"`
}

type SaleRequest struct {
	OutletID    *uint             `json:"outlet_id"`
	Items       []SaleItemRequest `json:"items"`
	TotalAmount float64           `json:"total_amount"`
}

// --- POST: Create a sale from a cart ---
// The sale header, its line items and every stock decrement commit or
// roll back as one unit; a partial sale is never persisted.
//
// Two deliberate oddities of this flow, kept as observed behavior:
// stock is decremented without a sufficiency check (a negative stock is
// the visible signal of an oversold item), and the decrement writes no
// inventory history row, unlike the adjustment and opname flows.
// TODO: confirm with the owner whether sales should ledger like
// adjustments do, then wire the history append into this transaction.
func CreateTransaction(c *gin.Context) {
	var input SaleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if len(input.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		return
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Item quantity must be greater than zero"})
			return
		}
	}

	sale := models.Transaction{
		OutletID:        input.OutletID,
		TotalAmount:     input.TotalAmount, // caller-computed; includes cart-level discounts
		TransactionDate: time.Now(),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, item := range input.Items {
			if err := tx.Create(&models.TransactionItem{
				TransactionID: sale.ID,
				ProductID:     item.ID,
				Quantity:      item.Quantity,
				Price:         item.Price, // snapshot of the price at sale time
			}).Error; err != nil {
				return err
			}

			// Single atomic decrement; may go below zero
			result := tx.Model(&models.Product{}).
				Where("id = ?", item.ID).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %d", errProductNotFound, item.ID)
			}
		}
		return nil
	})

	switch {
	case errors.Is(err, errProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create transaction"})
	default:
		c.JSON(http.StatusCreated, gin.H{"id": sale.ID})
	}
}

// --- GET: List transactions (optionally ?startDate&endDate) ---
func GetTransactions(c *gin.Context) {
	page, limit := parsePagination(c)

	query := database.DB.Model(&models.Transaction{})
	if start, end, ok := parseDateRange(c.Query("startDate"), c.Query("endDate")); ok {
		query = query.Where("transaction_date BETWEEN ? AND ?", start, end)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transactions"})
		return
	}

	var transactions []models.Transaction
	err := query.Preload("Items").
		Order("transaction_date desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       transactions,
		"pagination": buildPagination(total, page, limit),
	})
}

// parseDateRange turns YYYY-MM-DD bounds into an inclusive [start, end-of-day] range.
func parseDateRange(startStr, endStr string) (time.Time, time.Time, bool) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	end = end.Add(24*time.Hour - time.Second)
	return start, end, true
}
