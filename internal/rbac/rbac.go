package rbac

import (
	"errors"

	"go-pharma-pos/internal/models"

	"gorm.io/gorm"
)

// SuperadminRole bypasses every permission check. It may not even have a
// Role row; the bypass works by name comparison alone.
const SuperadminRole = "superadmin"

// Action is the closed set of things a role can be allowed to do on a module.
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionShow   Action = "show"
)

// Actions lists every valid action, in the order the dashboard renders them.
var Actions = []Action{ActionCreate, ActionEdit, ActionDelete, ActionShow}

// IsValidAction reports whether s names a known action.
func IsValidAction(s string) bool {
	switch Action(s) {
	case ActionCreate, ActionEdit, ActionDelete, ActionShow:
		return true
	}
	return false
}

// Modules is the fixed list of functional areas used as the unit of
// permission granularity.
var Modules = []string{
	"Products",
	"Stock",
	"Outlets",
	"Transactions",
	"Users",
	"Sales Report",
	"Forecasting",
	"Substitutions",
	"Suppliers",
	"Stock Opname",
	"Settings",
}

// IsValidModule reports whether name is one of the known modules.
func IsValidModule(name string) bool {
	for _, m := range Modules {
		if m == name {
			return true
		}
	}
	return false
}

// CheckPermission decides whether a role may perform an action on a module.
//  1. superadmin is allowed unconditionally.
//  2. A role name with no Role row has ZERO permissions (fail-closed),
//     not default access.
//  3. Otherwise the (role_id, module, action) row decides; a missing row
//     is the same as allowed=false.
func CheckPermission(db *gorm.DB, roleName, module string, action Action) (bool, error) {
	if roleName == SuperadminRole {
		return true, nil
	}

	var role models.Role
	err := db.Where("name = ?", roleName).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var perm models.RolePermission
	err = db.
		Where("role_id = ? AND module = ? AND action = ?", role.ID, module, string(action)).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return perm.Allowed, nil
}

// PermissionMatrix returns one row per module with the four action flags
// resolved for the given role ID. Modules with no stored rows come back
// all-false so the dashboard always renders the full list.
type PermissionRow struct {
	Module string `json:"module"`
	Create bool   `json:"create"`
	Edit   bool   `json:"edit"`
	Delete bool   `json:"delete"`
	Show   bool   `json:"show"`
}

func PermissionMatrix(db *gorm.DB, roleID uint) ([]PermissionRow, error) {
	var perms []models.RolePermission
	if err := db.Where("role_id = ?", roleID).Find(&perms).Error; err != nil {
		return nil, err
	}

	// Index stored rows by (module, action)
	allowed := make(map[string]map[string]bool)
	for _, p := range perms {
		if allowed[p.Module] == nil {
			allowed[p.Module] = make(map[string]bool)
		}
		allowed[p.Module][p.Action] = p.Allowed
	}

	rows := make([]PermissionRow, 0, len(Modules))
	for _, m := range Modules {
		rows = append(rows, PermissionRow{
			Module: m,
			Create: allowed[m][string(ActionCreate)],
			Edit:   allowed[m][string(ActionEdit)],
			Delete: allowed[m][string(ActionDelete)],
			Show:   allowed[m][string(ActionShow)],
		})
	}
	return rows, nil
}

// UpsertPermission inserts or updates a single allow-matrix cell inside tx.
func UpsertPermission(tx *gorm.DB, roleID uint, module string, action Action, allowedFlag bool) error {
	var existing models.RolePermission
	err := tx.Where("role_id = ? AND module = ? AND action = ?", roleID, module, string(action)).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.RolePermission{
			RoleID:  roleID,
			Module:  module,
			Action:  string(action),
			Allowed: allowedFlag,
		}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&existing).Update("allowed", allowedFlag).Error
}
