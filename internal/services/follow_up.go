package services

import (
	"fmt"
	"time"

	"clinicore/internal/models"

	"gorm.io/gorm"
)

type FollowUpService struct {
	db *gorm.DB
}

func NewFollowUpService(db *gorm.DB) *FollowUpService {
	return &FollowUpService{db: db}
}

// Create 创建随访（校验患者属于当前诊所）
func (s *FollowUpService) Create(clinicID, patientID uint, dueDate time.Time, reason string, notes *string) (*models.FollowUp, error) {
	if reason == "" {
		return nil, fmt.Errorf("随访事由不能为空")
	}

	var patientCount int64
	if err := s.db.Model(&models.Patient{}).
		Where("id = ? AND clinic_id = ?", patientID, clinicID).
		Count(&patientCount).Error; err != nil {
		return nil, err
	}
	if patientCount == 0 {
		return nil, ErrPatientNotFound
	}

	followUp := &models.FollowUp{
		ClinicID:  clinicID,
		PatientID: patientID,
		DueDate:   dueDate,
		Reason:    reason,
		Status:    models.FollowUpStatusPending,
		Notes:     notes,
	}

	err := s.db.Create(followUp).Error
	return followUp, err
}

// GetByID 获取诊所内指定随访（租户隔离）
func (s *FollowUpService) GetByID(clinicID, followUpID uint) (*models.FollowUp, error) {
	var followUp models.FollowUp
	err := s.db.Preload("Patient").
		Where("id = ? AND clinic_id = ?", followUpID, clinicID).
		First(&followUp).Error
	return &followUp, err
}

// GetWithFiltersAndPage 随访列表（状态筛选，按到期日排序，分页）
func (s *FollowUpService) GetWithFiltersAndPage(clinicID uint, status string, page, pageSize int) ([]*models.FollowUp, int64, error) {
	var followUps []*models.FollowUp
	var total int64

	query := s.db.Model(&models.FollowUp{}).Where("clinic_id = ?", clinicID)

	if status != "" && models.IsValidFollowUpStatus(status) {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Patient").
		Order("due_date ASC").Offset(offset).Limit(pageSize).Find(&followUps).Error
	if err != nil {
		return nil, 0, err
	}

	return followUps, total, nil
}

// UpdateStatus 更新随访状态（租户隔离）
func (s *FollowUpService) UpdateStatus(clinicID, followUpID uint, status string, notes *string) (*models.FollowUp, error) {
	if !models.IsValidFollowUpStatus(status) {
		return nil, fmt.Errorf("非法的随访状态: %s", status)
	}

	var followUp models.FollowUp
	if err := s.db.Where("id = ? AND clinic_id = ?", followUpID, clinicID).First(&followUp).Error; err != nil {
		return nil, err
	}

	followUp.Status = status
	if notes != nil {
		followUp.Notes = notes
	}

	err := s.db.Save(&followUp).Error
	return &followUp, err
}

// Delete 删除随访（租户隔离）
func (s *FollowUpService) Delete(clinicID, followUpID uint) error {
	result := s.db.Where("id = ? AND clinic_id = ?", followUpID, clinicID).Delete(&models.FollowUp{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkOverdue 批量标记到期未处理的随访，返回更新条数
func (s *FollowUpService) MarkOverdue(before time.Time) (int64, error) {
	result := s.db.Model(&models.FollowUp{}).
		Where("status = ? AND due_date < ?", models.FollowUpStatusPending, before).
		Update("status", models.FollowUpStatusOverdue)
	return result.RowsAffected, result.Error
}

// CountPending 待处理随访数（含已逾期，仪表盘用）
func (s *FollowUpService) CountPending(clinicID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.FollowUp{}).
		Where("clinic_id = ? AND status IN ?", clinicID,
			[]string{models.FollowUpStatusPending, models.FollowUpStatusOverdue}).
		Count(&count).Error
	return count, err
}
