package database

import (
	"fmt"

	"invoice-generator/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema of every persisted model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AuditLog{},
		&models.ExportRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
