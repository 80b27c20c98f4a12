package services

import (
	"context"
	"testing"

	"clinicore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSignupCreatesClinicAndAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)

	clinic, admin, err := svc.Signup(&SignupRequest{
		Name:          "仁和诊所",
		Slug:          "renhe",
		Abbreviation:  "RH",
		AdminName:     "王院长",
		AdminEmail:    "admin@renhe.com",
		AdminPassword: "Secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClinicStatusActive, clinic.Status)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	require.NotNil(t, admin.ClinicID)
	assert.Equal(t, clinic.ID, *admin.ClinicID)
	assert.True(t, admin.CheckPassword("Secret123"))

	// 注册即默认开启全部功能
	for _, key := range models.AllFeatures() {
		enabled, err := svc.HasFeature(context.Background(), clinic.ID, key)
		require.NoError(t, err)
		assert.True(t, enabled, "功能默认应开启: %s", key)
	}
}

func TestSignupSlugTaken(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)

	req := &SignupRequest{
		Name: "仁和诊所", Slug: "renhe", Abbreviation: "RH",
		AdminName: "王院长", AdminEmail: "admin@renhe.com", AdminPassword: "Secret123",
	}
	_, _, err := svc.Signup(req)
	require.NoError(t, err)

	dup := *req
	dup.AdminEmail = "other@renhe.com"
	_, _, err = svc.Signup(&dup)
	assert.ErrorIs(t, err, ErrSlugTaken)

	// 失败的注册不残留用户
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "other@renhe.com").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSignupInvalidSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)

	for _, slug := range []string{"Re nhe", "UPPER", "-lead", "trail-", "a"} {
		_, _, err := svc.Signup(&SignupRequest{
			Name: "仁和诊所", Slug: slug, Abbreviation: "RH",
			AdminName: "王院长", AdminEmail: "admin@renhe.com", AdminPassword: "Secret123",
		})
		assert.Error(t, err, "非法slug应被拒绝: %q", slug)
	}
}

func TestSignupShortPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)

	// 密码下限为6位，与入口参数校验保持一致
	_, _, err := svc.Signup(&SignupRequest{
		Name: "仁和诊所", Slug: "renhe", Abbreviation: "RH",
		AdminName: "王院长", AdminEmail: "admin@renhe.com", AdminPassword: "12345",
	})
	assert.Error(t, err)

	_, _, err = svc.Signup(&SignupRequest{
		Name: "仁和诊所", Slug: "renhe", Abbreviation: "RH",
		AdminName: "王院长", AdminEmail: "admin@renhe.com", AdminPassword: "123456",
	})
	assert.NoError(t, err)
}

func TestUpdateKeepsSlugImmutable(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)
	clinic := createTestClinic(t, db, "alpha", "ALP")

	updated, err := svc.Update(clinic.ID, "新名字", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "新名字", updated.Name)
	assert.Equal(t, "alpha", updated.Slug)
}

func TestUpdateFeaturesRejectsUnknownKey(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)
	clinic := createTestClinic(t, db, "alpha", "ALP")

	_, err := svc.UpdateFeatures(clinic.ID, map[string]bool{
		models.FeaturePatients: false,
		"telemedicine":         true,
	})
	assert.ErrorIs(t, err, ErrUnknownFeature)

	// 整体拒绝：已知键也不应被修改
	enabled, err := svc.HasFeature(context.Background(), clinic.ID, models.FeaturePatients)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestUpdateFeaturesDisable(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)
	clinic := createTestClinic(t, db, "alpha", "ALP")

	_, err := svc.UpdateFeatures(clinic.ID, map[string]bool{models.FeatureInventory: false})
	require.NoError(t, err)

	enabled, err := svc.HasFeature(context.Background(), clinic.ID, models.FeatureInventory)
	require.NoError(t, err)
	assert.False(t, enabled)

	// 其他功能不受影响
	enabled, err = svc.HasFeature(context.Background(), clinic.ID, models.FeaturePayments)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestHasFeatureUnknownKeyDenied(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)
	clinic := createTestClinic(t, db, "alpha", "ALP")

	enabled, err := svc.HasFeature(context.Background(), clinic.ID, "telemedicine")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestHasFeatureMissingClinic(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)

	_, err := svc.HasFeature(context.Background(), 9999, models.FeaturePatients)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeactivateClinic(t *testing.T) {
	db := newTestDB(t)
	svc := NewClinicService(db)
	clinic := createTestClinic(t, db, "alpha", "ALP")

	updated, err := svc.Deactivate(clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClinicStatusInactive, updated.Status)

	updated, err = svc.Activate(clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClinicStatusActive, updated.Status)
}
