package services

import (
	"testing"

	"clinicore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateStaffRejectsInvalidRole(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	svc := NewUserService(db)

	// 平台管理员不属于诊所内角色
	_, err := svc.CreateStaff(clinic.ID, "李雷", "lilei@alpha.com", "Secret123", models.RoleSuperAdmin, nil)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateStaff(clinic.ID, "李雷", "lilei@alpha.com", "Secret123", "JANITOR", nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateStaffDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	svc := NewUserService(db)

	_, err := svc.CreateStaff(clinic.ID, "李雷", "lilei@alpha.com", "Secret123", models.RoleNurse, nil)
	require.NoError(t, err)

	_, err = svc.CreateStaff(clinic.ID, "韩梅梅", "lilei@alpha.com", "Secret123", models.RoleNurse, nil)
	assert.Error(t, err)
}

func TestStaffSelfEditRejected(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	admin := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	svc := NewUserService(db)

	_, err := svc.UpdateStaff(clinic.ID, admin.ID, admin.ID, "新名字", models.RoleAdmin, "", nil)
	assert.ErrorIs(t, err, ErrSelfEdit)

	_, err = svc.DeactivateStaff(clinic.ID, admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrSelfEdit)

	_, err = svc.ActivateStaff(clinic.ID, admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrSelfEdit)
}

func TestStaffTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	alphaAdmin := createTestStaff(t, db, alpha.ID, "admin@alpha.com", models.RoleAdmin)
	betaNurse := createTestStaff(t, db, beta.ID, "nurse@beta.com", models.RoleNurse)
	svc := NewUserService(db)

	// 跨诊所操作表现为记录不存在
	_, err := svc.GetClinicStaff(alpha.ID, betaNurse.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.UpdateStaff(alpha.ID, alphaAdmin.ID, betaNurse.ID, "改名", models.RoleNurse, "", nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.DeactivateStaff(alpha.ID, alphaAdmin.ID, betaNurse.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeactivateStaff(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	admin := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	nurse := createTestStaff(t, db, clinic.ID, "nurse@alpha.com", models.RoleNurse)
	svc := NewUserService(db)

	updated, err := svc.DeactivateStaff(clinic.ID, admin.ID, nurse.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusInactive, updated.Status)
	assert.False(t, updated.IsActive())

	updated, err = svc.ActivateStaff(clinic.ID, admin.ID, nurse.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive())
}

func TestUpdateStaffPassword(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	admin := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	nurse := createTestStaff(t, db, clinic.ID, "nurse@alpha.com", models.RoleNurse)
	svc := NewUserService(db)

	// 密码留空表示不修改
	_, err := svc.UpdateStaff(clinic.ID, admin.ID, nurse.ID, "护士小刘", models.RoleNurse, "", nil)
	require.NoError(t, err)

	got, err := svc.GetByID(nurse.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("Passw0rd!"))

	_, err = svc.UpdateStaff(clinic.ID, admin.ID, nurse.ID, "护士小刘", models.RoleNurse, "NewPass99", nil)
	require.NoError(t, err)

	got, err = svc.GetByID(nurse.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckPassword("NewPass99"))
	assert.False(t, got.CheckPassword("Passw0rd!"))
}
