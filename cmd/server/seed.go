package main

import (
	"fmt"

	"clinicore/internal/database"
	"clinicore/internal/models"
	"clinicore/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建平台管理员
	if err := createPlatformAdmin(db); err != nil {
		return fmt.Errorf("创建平台管理员失败: %v", err)
	}

	// 2. 创建演示诊所
	if err := createDemoClinic(db); err != nil {
		return fmt.Errorf("创建演示诊所失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createPlatformAdmin 创建平台管理员用户
func createPlatformAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleSuperAdmin).Count(&count)
	if count > 0 {
		logger.GetLogger().Info("平台管理员已存在，跳过创建")
		return nil
	}

	admin := &models.User{
		Name:   "平台管理员",
		Email:  "admin@platform.com",
		Role:   models.RoleSuperAdmin,
		Status: models.UserStatusActive,
	}
	if err := admin.SetPassword("Admin@123"); err != nil {
		return err
	}

	return db.Create(admin).Error
}

// createDemoClinic 创建演示诊所及其员工和库存
func createDemoClinic(db *gorm.DB) error {
	var count int64
	db.Model(&models.Clinic{}).Where("slug = ?", "prashanti").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("演示诊所已存在，跳过创建")
		return nil
	}

	features := datatypes.JSONMap{}
	for _, key := range models.AllFeatures() {
		features[key] = true
	}

	tagline := "您身边的家庭诊所"
	clinic := &models.Clinic{
		Name:            "般若家庭诊所",
		Slug:            "prashanti",
		Abbreviation:    "PFC",
		Tagline:         &tagline,
		Status:          models.ClinicStatusActive,
		TimeSlots:       datatypes.JSON([]byte(`["09:00-09:30","09:30-10:00","10:00-10:30","10:30-11:00","11:00-11:30","17:00-17:30","17:30-18:00","18:00-18:30"]`)),
		Doctors:         datatypes.JSON([]byte(`["王医生","李医生"]`)),
		EnabledFeatures: features,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clinic).Error; err != nil {
			return err
		}

		staff := []struct {
			name, email, password, role string
		}{
			{"诊所管理员", "admin@prashanti.com", "Admin@123", models.RoleAdmin},
			{"前台小张", "reception@prashanti.com", "Front@123", models.RoleReceptionist},
			{"护士小刘", "nurse@prashanti.com", "Nurse@123", models.RoleNurse},
		}
		var clinicAdminID uint
		for _, s := range staff {
			user := &models.User{
				Name:     s.name,
				Email:    s.email,
				Role:     s.role,
				Status:   models.UserStatusActive,
				ClinicID: &clinic.ID,
			}
			if err := user.SetPassword(s.password); err != nil {
				return err
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			if s.role == models.RoleAdmin {
				clinicAdminID = user.ID
			}
		}

		// 初始库存同时落一笔入库流水，保证数量与流水之和一致
		items := []models.InventoryItem{
			{ClinicID: clinic.ID, Name: "对乙酰氨基酚片", Category: models.ItemCategoryMedicine, Unit: "盒", Quantity: 50, MinQuantity: 10},
			{ClinicID: clinic.ID, Name: "一次性注射器", Category: models.ItemCategoryConsumable, Unit: "支", Quantity: 200, MinQuantity: 50},
			{ClinicID: clinic.ID, Name: "84消毒液", Category: models.ItemCategoryCleaning, Unit: "瓶", Quantity: 20, MinQuantity: 5},
			{ClinicID: clinic.ID, Name: "血压计", Category: models.ItemCategoryEquipment, Unit: "台", Quantity: 3, MinQuantity: 1},
		}
		reason := "初始入库"
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
			record := &models.InventoryTransaction{
				ClinicID:      clinic.ID,
				ItemID:        items[i].ID,
				Type:          models.TransactionTypeStockIn,
				Quantity:      items[i].Quantity,
				Reason:        &reason,
				PerformedByID: clinicAdminID,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
