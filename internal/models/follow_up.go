package models

import "time"

// FollowUp 随访记录模型
type FollowUp struct {
	BaseModel
	ClinicID  uint      `json:"clinic_id" gorm:"not null;index"`
	PatientID uint      `json:"patient_id" gorm:"not null;index"`
	Patient   *Patient  `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	DueDate   time.Time `json:"due_date" gorm:"not null;index"`
	Reason    string    `json:"reason" gorm:"not null;size:255"`
	Status    string    `json:"status" gorm:"default:'PENDING';size:20;index"`
	Notes     *string   `json:"notes" gorm:"type:text"`
}

// TableName 表名
func (f *FollowUp) TableName() string {
	return "follow_ups"
}

// 随访状态常量
const (
	FollowUpStatusPending   = "PENDING"
	FollowUpStatusContacted = "CONTACTED"
	FollowUpStatusCompleted = "COMPLETED"
	FollowUpStatusCancelled = "CANCELLED"
	FollowUpStatusOverdue   = "OVERDUE" // 到期未处理，由调度器标记
)

var followUpStatuses = map[string]bool{
	FollowUpStatusPending:   true,
	FollowUpStatusContacted: true,
	FollowUpStatusCompleted: true,
	FollowUpStatusCancelled: true,
	FollowUpStatusOverdue:   true,
}

// IsValidFollowUpStatus 检查随访状态是否合法
func IsValidFollowUpStatus(status string) bool {
	return followUpStatuses[status]
}
