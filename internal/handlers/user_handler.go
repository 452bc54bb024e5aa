package handlers

import (
	"net/http"
	"strings"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"` // required on create, optional on edit
	Role     string `json:"role" binding:"required"`
	OutletID *uint  `json:"outlet_id"`
	Status   string `json:"status"`
}

// UserRow is the list-view shape: account fields plus the resolved
// outlet name, password hash never included.
type UserRow struct {
	ID         uint    `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	OutletID   *uint   `json:"outlet_id"`
	OutletName *string `json:"outlet_name"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// --- GET: List users with pagination and search ---
func GetUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	search := c.Query("search")

	query := database.DB.Model(&models.User{})
	if search != "" {
		query = query.Where("users.username LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	var users []UserRow
	err := query.
		Select("users.id, users.username, users.role, users.outlet_id, outlets.name as outlet_name, users.status, users.created_at").
		Joins("LEFT JOIN outlets ON outlets.id = users.outlet_id").
		Order("users.id").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&users).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"pagination": buildPagination(total, page, limit),
	})
}

// --- POST: Create a user ---
func AddUser(c *gin.Context) {
	var input UserRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, password and role are required"})
		return
	}

	// Only a superadmin can mint another superadmin.
	if input.Role == rbac.SuperadminRole && c.GetString("role") != rbac.SuperadminRole {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
		return
	}

	status := input.Status
	if status == "" {
		status = "active"
	}

	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		OutletID:     input.OutletID,
		Status:       status,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"role":      user.Role,
		"outlet_id": user.OutletID,
		"status":    user.Status,
	})
}

// --- PUT: Update a user ---
func UpdateUser(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	callerRole := c.GetString("role")

	// Superadmin accounts are off-limits to everyone else, and nobody
	// below superadmin can escalate a role to superadmin.
	if user.Role == rbac.SuperadminRole && callerRole != rbac.SuperadminRole {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	var input UserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and role are required"})
		return
	}
	if input.Role == rbac.SuperadminRole && callerRole != rbac.SuperadminRole {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	user.Username = input.Username
	user.Role = input.Role
	user.OutletID = input.OutletID
	if input.Status != "" {
		user.Status = input.Status
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := database.DB.Save(&user).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"role":      user.Role,
		"outlet_id": user.OutletID,
		"status":    user.Status,
	})
}

// --- DELETE: Remove a user ---
func DeleteUser(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	// No account may delete itself
	if user.ID == c.GetUint("userID") {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot delete your own account"})
		return
	}

	if user.Role == rbac.SuperadminRole && c.GetString("role") != rbac.SuperadminRole {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
