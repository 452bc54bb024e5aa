package database

import (
	"log"
	"os"

	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaults inserts the rows the system cannot run without: the
// superadmin account, the base roles, the cashier permission matrix,
// the starter outlets and the settings row. Every routine checks for
// existing data first, so running it on every startup is safe.
func SeedDefaults(db *gorm.DB) error {
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedSuperadmin(db); err != nil {
		return err
	}
	if err := seedCashierPermissions(db); err != nil {
		return err
	}
	if err := seedOutlets(db); err != nil {
		return err
	}
	return seedSettings(db)
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []string{rbac.SuperadminRole, "cashier"} {
		var count int64
		if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
		log.Printf("Seeded role: %s", name)
	}
	return nil
}

func seedSuperadmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", rbac.SuperadminRole).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("⚠️ WARNING: SUPERADMIN_PASSWORD not set, using default. Change it in production!")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	log.Println("Seeded superadmin account")
	return db.Create(&models.User{
		Username:     "superadmin",
		PasswordHash: string(hash),
		Role:         rbac.SuperadminRole,
		Status:       "active",
	}).Error
}

// seedCashierPermissions gives a fresh cashier role just enough to run
// the register: see products/stock and create transactions.
func seedCashierPermissions(db *gorm.DB) error {
	var role models.Role
	if err := db.Where("name = ?", "cashier").First(&role).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.RolePermission{
		{RoleID: role.ID, Module: "Products", Action: string(rbac.ActionShow), Allowed: true},
		{RoleID: role.ID, Module: "Stock", Action: string(rbac.ActionShow), Allowed: true},
		{RoleID: role.ID, Module: "Transactions", Action: string(rbac.ActionShow), Allowed: true},
		{RoleID: role.ID, Module: "Transactions", Action: string(rbac.ActionCreate), Allowed: true},
		{RoleID: role.ID, Module: "Substitutions", Action: string(rbac.ActionShow), Allowed: true},
	}
	return db.Create(&defaults).Error
}

func seedOutlets(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Outlet{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	outlets := []models.Outlet{
		{Name: "Cabang XYZ", Location: "Baktiseraga", Status: "Active"},
		{Name: "Cabang ABC", Location: "Banyuning", Status: "Active"},
	}
	return db.Create(&outlets).Error
}

func seedSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.Setting{PPNRate: 0, DiscountRate: 0}).Error
}
