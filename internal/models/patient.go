package models

// Patient 患者模型
type Patient struct {
	BaseModel
	ClinicID     uint    `json:"clinic_id" gorm:"not null;index"`
	Name         string  `json:"name" gorm:"not null;size:100"`
	Phone        string  `json:"phone" gorm:"not null;size:20;index"`
	Email        *string `json:"email" gorm:"size:100"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender" gorm:"size:10"`
	MedicalNotes *string `json:"medical_notes" gorm:"type:text"`
}

// TableName 表名
func (p *Patient) TableName() string {
	return "patients"
}
