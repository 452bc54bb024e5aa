package handlers

import (
	"net/http"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type OutletRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Status   string `json:"status"`
}

// --- GET: List all outlets ---
// The outlet list is small and feeds dropdowns, so no pagination here.
func GetOutlets(c *gin.Context) {
	var outlets []models.Outlet
	if err := database.DB.Order("id").Find(&outlets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch outlets"})
		return
	}
	c.JSON(http.StatusOK, outlets)
}

// --- POST: Add an outlet ---
func AddOutlet(c *gin.Context) {
	var input OutletRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and location are required"})
		return
	}

	status := input.Status
	if status == "" {
		status = "Active"
	}

	outlet := models.Outlet{Name: input.Name, Location: input.Location, Status: status}
	if err := database.DB.Create(&outlet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create outlet"})
		return
	}

	c.JSON(http.StatusCreated, outlet)
}

// --- PUT: Update an outlet ---
func UpdateOutlet(c *gin.Context) {
	var outlet models.Outlet
	if err := database.DB.First(&outlet, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Outlet not found"})
		return
	}

	var input OutletRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name and location are required"})
		return
	}

	outlet.Name = input.Name
	outlet.Location = input.Location
	if input.Status != "" {
		outlet.Status = input.Status
	}

	if err := database.DB.Save(&outlet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update outlet"})
		return
	}

	c.JSON(http.StatusOK, outlet)
}

// --- DELETE: Remove an outlet ---
// An outlet still referenced by a user or a past transaction is protected:
// the check happens in application logic before any delete is issued.
func DeleteOutlet(c *gin.Context) {
	var outlet models.Outlet
	if err := database.DB.First(&outlet, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Outlet not found"})
		return
	}

	var userCount int64
	if err := database.DB.Model(&models.User{}).Where("outlet_id = ?", outlet.ID).Count(&userCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete outlet"})
		return
	}
	if userCount > 0 {
		c.JSON(http.StatusForbidden, gin.H{"message": "Outlet still has assigned users"})
		return
	}

	var txCount int64
	if err := database.DB.Model(&models.Transaction{}).Where("outlet_id = ?", outlet.ID).Count(&txCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete outlet"})
		return
	}
	if txCount > 0 {
		c.JSON(http.StatusForbidden, gin.H{"message": "Outlet has recorded transactions"})
		return
	}

	if err := database.DB.Delete(&outlet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete outlet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Outlet deleted successfully"})
}
