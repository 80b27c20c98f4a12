package services

import (
	"testing"
	"time"

	"clinicore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAppointmentCrossTenantPatient(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	betaPatient := createTestPatient(t, db, beta.ID, "李四")
	svc := NewAppointmentService(db)

	_, err := svc.Create(alpha.ID, &CreateAppointmentRequest{
		PatientID: betaPatient.ID,
		Date:      time.Now().AddDate(0, 0, 1),
		TimeSlot:  "09:00-09:30",
		Type:      "初诊",
		Doctor:    "王医生",
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCreateAppointmentDefaultsScheduled(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewAppointmentService(db)

	appointment, err := svc.Create(clinic.ID, &CreateAppointmentRequest{
		PatientID: patient.ID,
		Date:      time.Now().AddDate(0, 0, 1),
		TimeSlot:  "09:00-09:30",
		Type:      "初诊",
		Doctor:    "王医生",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, appointment.Status)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewAppointmentService(db)

	appointment, err := svc.Create(clinic.ID, &CreateAppointmentRequest{
		PatientID: patient.ID,
		Date:      time.Now(),
		TimeSlot:  "09:00-09:30",
		Type:      "复诊",
		Doctor:    "李医生",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(clinic.ID, appointment.ID, models.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(clinic.ID, appointment.ID, "RESCHEDULED")
	assert.Error(t, err)
}

func TestListAppointmentsByDate(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewAppointmentService(db)

	today := time.Now()
	tomorrow := today.AddDate(0, 0, 1)

	_, err := svc.Create(clinic.ID, &CreateAppointmentRequest{
		PatientID: patient.ID, Date: today, TimeSlot: "09:00-09:30", Type: "初诊", Doctor: "王医生",
	})
	require.NoError(t, err)
	_, err = svc.Create(clinic.ID, &CreateAppointmentRequest{
		PatientID: patient.ID, Date: tomorrow, TimeSlot: "10:00-10:30", Type: "复诊", Doctor: "王医生",
	})
	require.NoError(t, err)

	appointments, total, err := svc.GetWithFiltersAndPage(clinic.ID, &today, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, appointments, 1)
}

func TestAppointmentTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	patient := createTestPatient(t, db, alpha.ID, "张三")
	svc := NewAppointmentService(db)

	appointment, err := svc.Create(alpha.ID, &CreateAppointmentRequest{
		PatientID: patient.ID, Date: time.Now(), TimeSlot: "09:00-09:30", Type: "初诊", Doctor: "王医生",
	})
	require.NoError(t, err)

	_, err = svc.GetByID(beta.ID, appointment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = svc.Delete(beta.ID, appointment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
