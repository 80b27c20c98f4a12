package models

import "time"

// Appointment 预约模型
type Appointment struct {
	BaseModel
	ClinicID  uint      `json:"clinic_id" gorm:"not null;index"`
	PatientID uint      `json:"patient_id" gorm:"not null;index"`
	Patient   *Patient  `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	TimeSlot  string    `json:"time_slot" gorm:"not null;size:10"`
	Type      string    `json:"type" gorm:"not null;size:50"`
	Doctor    string    `json:"doctor" gorm:"not null;size:100"`
	Status    string    `json:"status" gorm:"default:'SCHEDULED';size:20;index"`
	Notes     *string   `json:"notes" gorm:"type:text"`
}

// TableName 表名
func (a *Appointment) TableName() string {
	return "appointments"
}

// 预约状态常量
const (
	AppointmentStatusScheduled = "SCHEDULED"
	AppointmentStatusCompleted = "COMPLETED"
	AppointmentStatusCancelled = "CANCELLED"
	AppointmentStatusNoShow    = "NO_SHOW"
)

var appointmentStatuses = map[string]bool{
	AppointmentStatusScheduled: true,
	AppointmentStatusCompleted: true,
	AppointmentStatusCancelled: true,
	AppointmentStatusNoShow:    true,
}

// IsValidAppointmentStatus 检查预约状态是否合法
func IsValidAppointmentStatus(status string) bool {
	return appointmentStatuses[status]
}
