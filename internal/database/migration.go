package database

import (
	"fmt"

	"finanz-server/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.CreditCard{},
		&models.Invoice{},
		&models.Transaction{},
		&models.Planning{},
		&models.PlanningCategory{},
		&models.Holding{},
		&models.Moviment{},
		&models.Objective{},
		&models.StoredFile{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
