package database

import (
	"github.com/samislam/exchange-profitbook/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Cycle{},
		&models.Institution{},
		&models.Transaction{},
		&models.AuditLog{},
	)
}
