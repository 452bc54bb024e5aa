package database

import (
	"log"
	"time"

	"go-pharma-pos/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the MySQL connection, syncs the schema and seeds defaults.
// The retry loop covers the common docker-compose case where the database
// container is still warming up when the API starts.
func Connect(dsn string, debug bool) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	var err error
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	// Bounded pool: once 10 connections are busy, new requests queue for
	// a connection instead of failing immediately.
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying sql.DB:", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("✅ Successfully connected to MySQL!")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
	if err := SeedDefaults(DB); err != nil {
		log.Fatal("Failed to seed defaults:", err)
	}

	log.Println("✅ Database Schema Synced!")
}

// Migrate creates or additively updates every table. Safe to run on every
// startup: AutoMigrate never drops columns or data.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Outlet{},
		&models.Role{},
		&models.RolePermission{},
		&models.Product{},
		&models.Supplier{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.InventoryHistory{},
		&models.Setting{},
	)
}
