package services

import (
	"fmt"
	"unicode/utf8"

	"clinicore/internal/models"

	"gorm.io/gorm"
)

type PatientService struct {
	db *gorm.DB
}

func NewPatientService(db *gorm.DB) *PatientService {
	return &PatientService{db: db}
}

// ValidatePatientParams 校验患者参数
func (s *PatientService) ValidatePatientParams(name, phone string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return fmt.Errorf("患者姓名长度需在2-100之间")
	}
	if n := len(phone); n < 5 || n > 20 {
		return fmt.Errorf("联系电话长度需在5-20之间")
	}
	return nil
}

// Create 创建患者
func (s *PatientService) Create(clinicID uint, name, phone string, email *string, age *int, gender, medicalNotes *string) (*models.Patient, error) {
	if err := s.ValidatePatientParams(name, phone); err != nil {
		return nil, err
	}

	patient := &models.Patient{
		ClinicID:     clinicID,
		Name:         name,
		Phone:        phone,
		Email:        email,
		Age:          age,
		Gender:       gender,
		MedicalNotes: medicalNotes,
	}

	err := s.db.Create(patient).Error
	return patient, err
}

// GetByID 获取诊所内指定患者（租户隔离）
func (s *PatientService) GetByID(clinicID, patientID uint) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.Where("id = ? AND clinic_id = ?", patientID, clinicID).First(&patient).Error
	return &patient, err
}

// GetWithFiltersAndPage 患者列表（姓名/电话搜索，分页）
func (s *PatientService) GetWithFiltersAndPage(clinicID uint, keyword string, page, pageSize int) ([]*models.Patient, int64, error) {
	var patients []*models.Patient
	var total int64

	query := s.db.Model(&models.Patient{}).Where("clinic_id = ?", clinicID)

	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR phone LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}

	return patients, total, nil
}

// Update 更新患者信息（租户隔离）
func (s *PatientService) Update(clinicID, patientID uint, name, phone string, email *string, age *int, gender, medicalNotes *string) (*models.Patient, error) {
	if err := s.ValidatePatientParams(name, phone); err != nil {
		return nil, err
	}

	var patient models.Patient
	if err := s.db.Where("id = ? AND clinic_id = ?", patientID, clinicID).First(&patient).Error; err != nil {
		return nil, err
	}

	patient.Name = name
	patient.Phone = phone
	patient.Email = email
	patient.Age = age
	patient.Gender = gender
	patient.MedicalNotes = medicalNotes

	err := s.db.Save(&patient).Error
	return &patient, err
}

// Delete 删除患者（租户隔离）
func (s *PatientService) Delete(clinicID, patientID uint) error {
	result := s.db.Where("id = ? AND clinic_id = ?", patientID, clinicID).Delete(&models.Patient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByClinic 诊所患者总数（仪表盘用）
func (s *PatientService) CountByClinic(clinicID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Patient{}).Where("clinic_id = ?", clinicID).Count(&count).Error
	return count, err
}
