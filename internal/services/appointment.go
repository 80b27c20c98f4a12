package services

import (
	"fmt"
	"time"

	"clinicore/internal/models"

	"gorm.io/gorm"
)

type AppointmentService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// WithNotifier 挂载事件通知器
func (s *AppointmentService) WithNotifier(n *Notifier) *AppointmentService {
	s.notifier = n
	return s
}

// CreateAppointmentRequest 预约参数
type CreateAppointmentRequest struct {
	PatientID uint
	Date      time.Time
	TimeSlot  string
	Type      string
	Doctor    string
	Notes     *string
}

// Create 创建预约（校验患者属于当前诊所）
func (s *AppointmentService) Create(clinicID uint, req *CreateAppointmentRequest) (*models.Appointment, error) {
	if req.TimeSlot == "" || req.Type == "" || req.Doctor == "" {
		return nil, fmt.Errorf("时段、类型和医生不能为空")
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

	appointment := &models.Appointment{
		ClinicID:  clinicID,
		PatientID: req.PatientID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Type:      req.Type,
		Doctor:    req.Doctor,
		Status:    models.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.db.Create(appointment).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyAppointmentCreated(appointment)
	}

	return appointment, nil
}

// GetByID 获取诊所内指定预约（租户隔离）
func (s *AppointmentService) GetByID(clinicID, appointmentID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.Preload("Patient").
		Where("id = ? AND clinic_id = ?", appointmentID, clinicID).
		First(&appointment).Error
	return &appointment, err
}

// GetWithFiltersAndPage 预约列表（日期、状态筛选，分页）
func (s *AppointmentService) GetWithFiltersAndPage(clinicID uint, date *time.Time, status string, page, pageSize int) ([]*models.Appointment, int64, error) {
	var appointments []*models.Appointment
	var total int64

	query := s.db.Model(&models.Appointment{}).Where("clinic_id = ?", clinicID)

	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		query = query.Where("date >= ? AND date < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}
	if status != "" && models.IsValidAppointmentStatus(status) {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Patient").
		Order("date ASC, time_slot ASC").Offset(offset).Limit(pageSize).Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

// UpdateStatus 更新预约状态（租户隔离）
func (s *AppointmentService) UpdateStatus(clinicID, appointmentID uint, status string) (*models.Appointment, error) {
	if !models.IsValidAppointmentStatus(status) {
		return nil, fmt.Errorf("非法的预约状态: %s", status)
	}

	var appointment models.Appointment
	if err := s.db.Where("id = ? AND clinic_id = ?", appointmentID, clinicID).First(&appointment).Error; err != nil {
		return nil, err
	}

	appointment.Status = status
	err := s.db.Save(&appointment).Error
	return &appointment, err
}

// Update 更新预约信息（租户隔离）
func (s *AppointmentService) Update(clinicID, appointmentID uint, date time.Time, timeSlot, appointmentType, doctor string, notes *string) (*models.Appointment, error) {
	if timeSlot == "" || appointmentType == "" || doctor == "" {
		return nil, fmt.Errorf("时段、类型和医生不能为空")
	}

	var appointment models.Appointment
	if err := s.db.Where("id = ? AND clinic_id = ?", appointmentID, clinicID).First(&appointment).Error; err != nil {
		return nil, err
	}

	appointment.Date = date
	appointment.TimeSlot = timeSlot
	appointment.Type = appointmentType
	appointment.Doctor = doctor
	appointment.Notes = notes

	err := s.db.Save(&appointment).Error
	return &appointment, err
}

// Delete 删除预约（租户隔离）
func (s *AppointmentService) Delete(clinicID, appointmentID uint) error {
	result := s.db.Where("id = ? AND clinic_id = ?", appointmentID, clinicID).Delete(&models.Appointment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountToday 今日预约数（仪表盘用）
func (s *AppointmentService) CountToday(clinicID uint) (int64, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.db.Model(&models.Appointment{}).
		Where("clinic_id = ? AND date >= ? AND date < ?", clinicID, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}
