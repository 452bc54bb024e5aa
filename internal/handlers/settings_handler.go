package handlers

import (
	"net/http"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: Transaction settings ---
func GetSettings(c *gin.Context) {
	var setting models.Setting
	if err := database.DB.First(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

type SettingsRequest struct {
	PPNRate      *float64 `json:"ppn_rate" binding:"required"`
	DiscountRate *float64 `json:"discount_rate" binding:"required"`
}

// --- PUT: Update transaction settings ---
func UpdateSettings(c *gin.Context) {
	var input SettingsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "ppn_rate and discount_rate are required"})
		return
	}
	if *input.PPNRate < 0 || *input.DiscountRate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rates cannot be negative"})
		return
	}

	var setting models.Setting
	if err := database.DB.First(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch settings"})
		return
	}

	setting.PPNRate = *input.PPNRate
	setting.DiscountRate = *input.DiscountRate
	if err := database.DB.Save(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, setting)
}
