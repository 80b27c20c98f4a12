package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPatientSearch(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	svc := NewPatientService(db)

	_, err := svc.Create(clinic.ID, "张三", "13800000001", nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = svc.Create(clinic.ID, "李四", "13900000002", nil, nil, nil, nil)
	require.NoError(t, err)

	patients, total, err := svc.GetWithFiltersAndPage(clinic.ID, "张", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, patients, 1)
	assert.Equal(t, "张三", patients[0].Name)

	// 电话搜索
	patients, total, err = svc.GetWithFiltersAndPage(clinic.ID, "139", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "李四", patients[0].Name)
}

func TestPatientTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	svc := NewPatientService(db)

	patient, err := svc.Create(alpha.ID, "张三", "13800000001", nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = svc.GetByID(beta.ID, patient.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	patients, total, err := svc.GetWithFiltersAndPage(beta.ID, "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, patients)
}

func TestPatientValidation(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	svc := NewPatientService(db)

	_, err := svc.Create(clinic.ID, "", "13800000001", nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = svc.Create(clinic.ID, "张三", "", nil, nil, nil, nil)
	assert.Error(t, err)
}
