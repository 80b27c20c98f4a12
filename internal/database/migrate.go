package database

import (
	"clinicore/internal/models"
	"clinicore/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&models.Clinic{},
		&models.User{},
		&models.Patient{},
		&models.Appointment{},
		&models.Payment{},
		&models.FollowUp{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	return nil
}
