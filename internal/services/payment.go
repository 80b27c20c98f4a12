package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"clinicore/internal/models"
	"clinicore/pkg/metrics"

	"gorm.io/gorm"
)

// 收费相关业务错误
var (
	ErrPatientNotFound = errors.New("患者不存在")
	ErrReceiptConflict = errors.New("收据号冲突")
)

type PaymentService struct {
	db *gorm.DB

	// 按 诊所ID+日期 分段的互斥锁，守护收据号的 读最大值-递增-写入
	// 单实例部署下可消除重复发放；(clinic_id, receipt) 唯一索引兜底多实例场景
	seqMu    sync.Mutex
	seqLocks map[string]*sync.Mutex
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		db:       db,
		seqLocks: make(map[string]*sync.Mutex),
	}
}

func (s *PaymentService) sequenceLock(clinicID uint, dateStr string) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", clinicID, dateStr)

	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	// 旧日期的键保留不删：跨日瞬间删除可能让仍持旧锁的请求
	// 与新建的锁并行。每诊所每日一个键，增长可以接受
	lock, ok := s.seqLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.seqLocks[key] = lock
	}
	return lock
}

// NextReceiptNumber 生成下一个收据号：{诊所缩写}-{YYYYMMDD}-{3位序号}
// 序号为该诊所当日已用最大序号加一，当日无记录时从1开始
func (s *PaymentService) NextReceiptNumber(clinicID uint) (string, error) {
	var clinic models.Clinic
	if err := s.db.Select("id", "abbreviation").First(&clinic, clinicID).Error; err != nil {
		return "", err
	}

	dateStr := time.Now().Format("20060102")
	prefix := fmt.Sprintf("%s-%s-", clinic.Abbreviation, dateStr)

	lock := s.sequenceLock(clinicID, dateStr)
	lock.Lock()
	defer lock.Unlock()

	return s.nextReceiptWithPrefix(s.db, clinicID, prefix)
}

func (s *PaymentService) nextReceiptWithPrefix(tx *gorm.DB, clinicID uint, prefix string) (string, error) {
	var latest models.Payment
	seq := 1

	err := tx.Where("clinic_id = ? AND receipt LIKE ?", clinicID, prefix+"%").
		Order("receipt DESC").
		Select("receipt").
		First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if err == nil {
		parts := strings.Split(latest.Receipt, "-")
		if last, perr := strconv.Atoi(parts[len(parts)-1]); perr == nil {
			seq = last + 1
		}
	}

	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// CreatePaymentRequest 收费参数
type CreatePaymentRequest struct {
	PatientID   uint
	Amount      float64
	Method      string
	Description *string
	Date        *time.Time
}

// Create 记录收费并发放收据号
// 收据号分配和收费落库在同一把诊所-日期锁内完成，杜绝同日并发重号
func (s *PaymentService) Create(clinicID, actorID uint, req *CreatePaymentRequest) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("金额必须大于0")
	}
	if !models.IsValidPaymentMethod(req.Method) {
		return nil, fmt.Errorf("非法的支付方式: %s", req.Method)
	}

	// 跨租户校验：患者必须属于当前诊所
	var patientCount int64
	if err := s.db.Model(&models.Patient{}).
		Where("id = ? AND clinic_id = ?", req.PatientID, clinicID).
		Count(&patientCount).Error; err != nil {
		return nil, err
	}
	if patientCount == 0 {
		return nil, ErrPatientNotFound
	}

	var clinic models.Clinic
	if err := s.db.Select("id", "abbreviation").First(&clinic, clinicID).Error; err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	dateStr := time.Now().Format("20060102")
	prefix := fmt.Sprintf("%s-%s-", clinic.Abbreviation, dateStr)

	lock := s.sequenceLock(clinicID, dateStr)
	lock.Lock()
	defer lock.Unlock()

	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		receipt, err := s.nextReceiptWithPrefix(tx, clinicID, prefix)
		if err != nil {
			return err
		}

		payment = &models.Payment{
			ClinicID:     clinicID,
			PatientID:    req.PatientID,
			Amount:       req.Amount,
			Method:       req.Method,
			Status:       models.PaymentStatusPaid,
			Receipt:      receipt,
			Description:  req.Description,
			Date:         date,
			ReceivedByID: actorID,
		}
		return tx.Create(payment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "idx_payments_clinic_receipt") {
			return nil, ErrReceiptConflict
		}
		return nil, err
	}

	metrics.ReceiptCounter.Inc()
	return payment, nil
}

// GetByID 获取诊所内指定收费记录（租户隔离）
func (s *PaymentService) GetByID(clinicID, paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Patient").Preload("ReceivedBy").
		Where("id = ? AND clinic_id = ?", paymentID, clinicID).
		First(&payment).Error
	return &payment, err
}

// ListWithFilters 收费记录列表（日期区间、支付方式筛选，含合计）
func (s *PaymentService) ListWithFilters(clinicID uint, from, to *time.Time, method string, page, pageSize int) ([]*models.Payment, int64, float64, error) {
	var payments []*models.Payment
	var total int64
	var sum float64

	query := s.db.Model(&models.Payment{}).Where("clinic_id = ?", clinicID)

	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	if method != "" && models.IsValidPaymentMethod(method) {
		query = query.Where("method = ?", method)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error; err != nil {
		return nil, 0, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Select("*").Preload("Patient").
		Order("date DESC").Offset(offset).Limit(pageSize).Find(&payments).Error
	if err != nil {
		return nil, 0, 0, err
	}

	return payments, total, sum, nil
}

// SumSince 某时间点以来的收费合计（仪表盘用）
func (s *PaymentService) SumSince(clinicID uint, since time.Time) (float64, error) {
	var sum float64
	err := s.db.Model(&models.Payment{}).
		Where("clinic_id = ? AND date >= ?", clinicID, since).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	return sum, err
}
