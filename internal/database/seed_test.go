package database

import (
	"testing"

	"go-pharma-pos/internal/models"
	"go-pharma-pos/internal/rbac"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedDefaults(t *testing.T) {
	db := openTestDB(t)

	if err := SeedDefaults(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var admin models.User
	if err := db.Where("username = ?", "superadmin").First(&admin).Error; err != nil {
		t.Fatalf("superadmin account missing: %v", err)
	}
	if admin.Role != rbac.SuperadminRole || admin.Status != "active" {
		t.Errorf("unexpected superadmin row: %+v", admin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")); err != nil {
		t.Errorf("default password must verify: %v", err)
	}

	var roleCount int64
	db.Model(&models.Role{}).Count(&roleCount)
	if roleCount != 2 {
		t.Errorf("expected 2 seeded roles, got %d", roleCount)
	}

	// The starter cashier role can run the register and nothing else.
	var cashier models.Role
	if err := db.Where("name = ?", "cashier").First(&cashier).Error; err != nil {
		t.Fatalf("cashier role missing: %v", err)
	}
	allowed, err := rbac.CheckPermission(db, "cashier", "Transactions", rbac.ActionCreate)
	if err != nil || !allowed {
		t.Errorf("seeded cashier must be able to create transactions, got %v err=%v", allowed, err)
	}
	allowed, err = rbac.CheckPermission(db, "cashier", "Users", rbac.ActionDelete)
	if err != nil || allowed {
		t.Errorf("seeded cashier must not manage users, got %v err=%v", allowed, err)
	}

	var outletCount, settingCount int64
	db.Model(&models.Outlet{}).Count(&outletCount)
	db.Model(&models.Setting{}).Count(&settingCount)
	if outletCount != 2 {
		t.Errorf("expected 2 starter outlets, got %d", outletCount)
	}
	if settingCount != 1 {
		t.Errorf("expected 1 settings row, got %d", settingCount)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := SeedDefaults(db); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}

	cases := []struct {
		name  string
		model any
		want  int64
	}{
		{"roles", &models.Role{}, 2},
		{"users", &models.User{}, 1},
		{"permissions", &models.RolePermission{}, 5},
		{"outlets", &models.Outlet{}, 2},
		{"settings", &models.Setting{}, 1},
	}
	for _, tc := range cases {
		var count int64
		if err := db.Model(tc.model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", tc.name, err)
		}
		if count != tc.want {
			t.Errorf("%s: expected %d after reseed, got %d", tc.name, tc.want, count)
		}
	}
}
