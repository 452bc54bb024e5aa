package handlers

import (
	"net/http"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type SupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// --- GET: List suppliers with pagination and search ---
func GetSuppliers(c *gin.Context) {
	page, limit := parsePagination(c)
	search := c.Query("search")

	query := database.DB.Model(&models.Supplier{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch suppliers"})
		return
	}

	var suppliers []models.Supplier
	if err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&suppliers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch suppliers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       suppliers,
		"pagination": buildPagination(total, page, limit),
	})
}

// --- POST: Add a supplier ---
func AddSupplier(c *gin.Context) {
	var input SupplierRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	}

	supplier := models.Supplier{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Address:       input.Address,
	}
	if err := database.DB.Create(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create supplier"})
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

// --- PUT: Update a supplier ---
func UpdateSupplier(c *gin.Context) {
	var supplier models.Supplier
	if err := database.DB.First(&supplier, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Supplier not found"})
		return
	}

	var input SupplierRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name is required"})
		return
	}

	supplier.Name = input.Name
	supplier.ContactPerson = input.ContactPerson
	supplier.Phone = input.Phone
	supplier.Address = input.Address

	if err := database.DB.Save(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update supplier"})
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// --- DELETE: Remove a supplier ---
func DeleteSupplier(c *gin.Context) {
	var supplier models.Supplier
	if err := database.DB.First(&supplier, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Supplier not found"})
		return
	}

	if err := database.DB.Delete(&supplier).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete supplier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
