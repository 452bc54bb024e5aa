package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-pharma-pos/internal/database"
	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET: List permission modules ---
func GetModules(c *gin.Context) {
	c.JSON(http.StatusOK, rbac.Modules)
}

// --- GET: List roles ---
func GetRoles(c *gin.Context) {
	var roles []models.Role
	if err := database.DB.Order("id").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch roles"})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// --- POST: Create a role ---
func AddRole(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Role name is required"})
		return
	}

	role := models.Role{Name: input.Name}
	if err := database.DB.Create(&role).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Role already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create role"})
		return
	}

	c.JSON(http.StatusCreated, role)
}

// --- DELETE: Remove a role ---
// The reserved superadmin role can never be removed, no matter who asks.
func DeleteRole(c *gin.Context) {
	var role models.Role
	if err := database.DB.First(&role, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Role not found"})
		return
	}

	if role.Name == rbac.SuperadminRole {
		c.JSON(http.StatusForbidden, gin.H{"message": "The superadmin role cannot be deleted"})
		return
	}

	// Drop the role and its permission rows together
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully"})
}

// --- GET: Permission matrix for a role (?roleId= or ?roleName=) ---
func GetPermissions(c *gin.Context) {
	var role models.Role

	if roleName := c.Query("roleName"); roleName != "" {
		// The superadmin role bypasses the table entirely; the dashboard
		// still expects the full all-true matrix back.
		if roleName == rbac.SuperadminRole {
			rows := make([]rbac.PermissionRow, 0, len(rbac.Modules))
			for _, m := range rbac.Modules {
				rows = append(rows, rbac.PermissionRow{Module: m, Create: true, Edit: true, Delete: true, Show: true})
			}
			c.JSON(http.StatusOK, rows)
			return
		}
		err := database.DB.Where("name = ?", roleName).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown role name has zero permissions: all-false matrix
			rows, mErr := rbac.PermissionMatrix(database.DB, 0)
			if mErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch permissions"})
				return
			}
			c.JSON(http.StatusOK, rows)
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch permissions"})
			return
		}
	} else {
		roleID, err := strconv.Atoi(c.Query("roleId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "roleId or roleName is required"})
			return
		}
		if err := database.DB.First(&role, roleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Role not found"})
			return
		}
	}

	rows, err := rbac.PermissionMatrix(database.DB, role.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch permissions"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type PermissionUpdateRequest struct {
	RoleID uint   `json:"roleId" binding:"required"`
	Module string `json:"module"`
	Action string `json:"action"`
	Allowed *bool `json:"allowed"`
	// Bulk form: one record per module carrying all four flags
	Permissions []rbac.PermissionRow `json:"permissions"`
}

// --- PUT: Upsert permissions (single cell or bulk matrix) ---
// The bulk form is atomic: either every submitted row lands or none do.
func UpdatePermissions(c *gin.Context) {
	var input PermissionUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "roleId is required"})
		return
	}

	var role models.Role
	if err := database.DB.First(&role, input.RoleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Role not found"})
		return
	}

	// Bulk update
	if len(input.Permissions) > 0 {
		for _, p := range input.Permissions {
			if !rbac.IsValidModule(p.Module) {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown module: " + p.Module})
				return
			}
		}
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, p := range input.Permissions {
				flags := map[rbac.Action]bool{
					rbac.ActionCreate: p.Create,
					rbac.ActionEdit:   p.Edit,
					rbac.ActionDelete: p.Delete,
					rbac.ActionShow:   p.Show,
				}
				for _, action := range rbac.Actions {
					if err := rbac.UpsertPermission(tx, role.ID, p.Module, action, flags[action]); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update permissions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Permissions updated successfully"})
		return
	}

	// Single-cell update
	if !rbac.IsValidModule(input.Module) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown module: " + input.Module})
		return
	}
	if !rbac.IsValidAction(input.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown action: " + input.Action})
		return
	}
	if input.Allowed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "allowed is required"})
		return
	}

	if err := rbac.UpsertPermission(database.DB, role.ID, input.Module, rbac.Action(input.Action), *input.Allowed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update permission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Permission updated successfully"})
}
