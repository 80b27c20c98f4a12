package services

import (
	"testing"
	"time"

	"clinicore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	actor := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)

	patientSvc := NewPatientService(db)
	patient, err := patientSvc.Create(clinic.ID, "张三", "13800000001", nil, nil, nil, nil)
	require.NoError(t, err)
	_, err = patientSvc.Create(clinic.ID, "李四", "13900000002", nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = NewAppointmentService(db).Create(clinic.ID, &CreateAppointmentRequest{
		PatientID: patient.ID, Date: time.Now(), TimeSlot: "09:00-09:30", Type: "初诊", Doctor: "王医生",
	})
	require.NoError(t, err)

	_, err = NewFollowUpService(db).Create(clinic.ID, patient.ID, time.Now().AddDate(0, 0, 2), "复诊", nil)
	require.NoError(t, err)

	_, err = NewInventoryService(db).CreateItem(clinic.ID, &CreateItemRequest{
		Name: "告急物品", Category: models.ItemCategoryMedicine, Unit: "盒", Quantity: 2, MinQuantity: 10,
	}, actor.ID)
	require.NoError(t, err)

	_, err = NewPaymentService(db).Create(clinic.ID, actor.ID, &CreatePaymentRequest{
		PatientID: patient.ID, Amount: 260, Method: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	stats, err := NewStatsService(db).Dashboard(clinic.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Patients)
	assert.EqualValues(t, 1, stats.TodayAppointments)
	assert.EqualValues(t, 1, stats.PendingFollowUps)
	assert.EqualValues(t, 1, stats.LowStockItems)
	assert.InDelta(t, 260, stats.MonthRevenue, 0.001)
}
