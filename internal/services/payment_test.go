package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"clinicore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReceiptNumberStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	svc := NewPaymentService(db)

	receipt, err := svc.NextReceiptNumber(clinic.ID)
	require.NoError(t, err)

	expected := fmt.Sprintf("ALP-%s-001", time.Now().Format("20060102"))
	assert.Equal(t, expected, receipt)
}

func TestCreatePaymentSequence(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	actor := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewPaymentService(db)

	dateStr := time.Now().Format("20060102")
	for i := 1; i <= 3; i++ {
		payment, err := svc.Create(clinic.ID, actor.ID, &CreatePaymentRequest{
			PatientID: patient.ID,
			Amount:    100,
			Method:    models.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ALP-%s-%03d", dateStr, i), payment.Receipt)
	}
}

func TestCreatePaymentSequencePerClinic(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	alphaActor := createTestStaff(t, db, alpha.ID, "admin@alpha.com", models.RoleAdmin)
	betaActor := createTestStaff(t, db, beta.ID, "admin@beta.com", models.RoleAdmin)
	alphaPatient := createTestPatient(t, db, alpha.ID, "张三")
	betaPatient := createTestPatient(t, db, beta.ID, "李四")
	svc := NewPaymentService(db)

	p1, err := svc.Create(alpha.ID, alphaActor.ID, &CreatePaymentRequest{
		PatientID: alphaPatient.ID, Amount: 100, Method: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	// 各诊所序号独立推进
	p2, err := svc.Create(beta.ID, betaActor.ID, &CreatePaymentRequest{
		PatientID: betaPatient.ID, Amount: 50, Method: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	dateStr := time.Now().Format("20060102")
	assert.Equal(t, "ALP-"+dateStr+"-001", p1.Receipt)
	assert.Equal(t, "BET-"+dateStr+"-001", p2.Receipt)
}

func TestCreatePaymentConcurrentUniqueReceipts(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	actor := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewPaymentService(db)

	const n = 10
	receipts := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payment, err := svc.Create(clinic.ID, actor.ID, &CreatePaymentRequest{
				PatientID: patient.ID,
				Amount:    80,
				Method:    models.PaymentMethodUPI,
			})
			if assert.NoError(t, err) {
				receipts <- payment.Receipt
			}
		}()
	}
	wg.Wait()
	close(receipts)

	seen := make(map[string]bool)
	for r := range receipts {
		assert.False(t, seen[r], "收据号重复: %s", r)
		seen[r] = true
	}
	assert.Len(t, seen, n)
}

// 换日取新锁后，旧日期的锁实例必须保持不变，
// 否则仍持旧锁的请求会与新锁下的请求并行发号
func TestSequenceLockStableAcrossDates(t *testing.T) {
	svc := NewPaymentService(nil)

	old := svc.sequenceLock(1, "20260101")
	svc.sequenceLock(1, "20260102")
	svc.sequenceLock(2, "20260102")

	assert.Same(t, old, svc.sequenceLock(1, "20260101"))
}

func TestCreatePaymentCrossTenantPatient(t *testing.T) {
	db := newTestDB(t)
	alpha := createTestClinic(t, db, "alpha", "ALP")
	beta := createTestClinic(t, db, "beta", "BET")
	actor := createTestStaff(t, db, alpha.ID, "admin@alpha.com", models.RoleAdmin)
	betaPatient := createTestPatient(t, db, beta.ID, "李四")
	svc := NewPaymentService(db)

	_, err := svc.Create(alpha.ID, actor.ID, &CreatePaymentRequest{
		PatientID: betaPatient.ID,
		Amount:    60,
		Method:    models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestCreatePaymentValidation(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	actor := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewPaymentService(db)

	_, err := svc.Create(clinic.ID, actor.ID, &CreatePaymentRequest{
		PatientID: patient.ID, Amount: 0, Method: models.PaymentMethodCash,
	})
	assert.Error(t, err)

	_, err = svc.Create(clinic.ID, actor.ID, &CreatePaymentRequest{
		PatientID: patient.ID, Amount: 100, Method: "BARTER",
	})
	assert.Error(t, err)
}

func TestListPaymentsWithSum(t *testing.T) {
	db := newTestDB(t)
	clinic := createTestClinic(t, db, "alpha", "ALP")
	actor := createTestStaff(t, db, clinic.ID, "admin@alpha.com", models.RoleAdmin)
	patient := createTestPatient(t, db, clinic.ID, "张三")
	svc := NewPaymentService(db)

	for _, amount := range []float64{100, 200, 50} {
		_, err := svc.Create(clinic.ID, actor.ID, &CreatePaymentRequest{
			PatientID: patient.ID, Amount: amount, Method: models.PaymentMethodCash,
		})
		require.NoError(t, err)
	}

	payments, total, sum, err := svc.ListWithFilters(clinic.ID, nil, nil, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, payments, 3)
	assert.InDelta(t, 350, sum, 0.001)
}
