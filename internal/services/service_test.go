package services

import (
	"fmt"
	"testing"

	"clinicore/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试独立的内存库
// 单连接池让并发事务在连接上排队，并发用例验证的是业务层的原子性
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Clinic{},
		&models.User{},
		&models.Patient{},
		&models.Appointment{},
		&models.Payment{},
		&models.FollowUp{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func createTestClinic(t *testing.T, db *gorm.DB, slug, abbreviation string) *models.Clinic {
	t.Helper()

	features := datatypes.JSONMap{}
	for _, key := range models.AllFeatures() {
		features[key] = true
	}

	clinic := &models.Clinic{
		Name:            "测试诊所-" + slug,
		Slug:            slug,
		Abbreviation:    abbreviation,
		Status:          models.ClinicStatusActive,
		EnabledFeatures: features,
	}
	require.NoError(t, db.Create(clinic).Error)
	return clinic
}

func createTestStaff(t *testing.T, db *gorm.DB, clinicID uint, email, role string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "测试员工",
		Email:    email,
		Role:     role,
		Status:   models.UserStatusActive,
		ClinicID: &clinicID,
	}
	require.NoError(t, user.SetPassword("Passw0rd!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPatient(t *testing.T, db *gorm.DB, clinicID uint, name string) *models.Patient {
	t.Helper()

	patient := &models.Patient{
		ClinicID: clinicID,
		Name:     name,
		Phone:    "13800000000",
	}
	require.NoError(t, db.Create(patient).Error)
	return patient
}
