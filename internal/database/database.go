package database

import (
	"fmt"

	"vpn-backend/config"
	"vpn-backend/internal/models"
	"vpn-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and runs migrations. When no DB host is
// configured it falls back to a local SQLite file for development.
func Connect(cfg *config.Config) error {
	var err error

	if cfg.DBHost == "" {
		logger.Log.Info("DB_HOST not set, using SQLite for development")
		DB, err = gorm.Open(sqlite.Open("vpn-backend.db"), &gorm.Config{})
	} else {
		DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return AutoMigrate(DB)
}

// AutoMigrate creates/updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Subscription{},
		&models.Payment{},
		&models.Server{},
	)
}

// Close closes the underlying sql connection pool.
func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		sqlDB.Close()
	}
}
