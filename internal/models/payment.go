package models

import "time"

// Payment 收费记录模型
// 收据号格式：{诊所缩写}-{YYYYMMDD}-{3位序号}，同诊所同日内递增
// (clinic_id, receipt) 唯一索引兜底防止重复发放
type Payment struct {
	BaseModel
	ClinicID     uint      `json:"clinic_id" gorm:"not null;index;uniqueIndex:idx_payments_clinic_receipt"`
	PatientID    uint      `json:"patient_id" gorm:"not null;index"`
	Patient      *Patient  `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Amount       float64   `json:"amount" gorm:"not null;type:numeric(10,2)"`
	Method       string    `json:"method" gorm:"not null;size:20"`
	Status       string    `json:"status" gorm:"default:'PAID';size:20"`
	Receipt      string    `json:"receipt" gorm:"not null;size:30;uniqueIndex:idx_payments_clinic_receipt"`
	Description  *string   `json:"description" gorm:"size:255"`
	Date         time.Time `json:"date" gorm:"not null;index"`
	ReceivedByID uint      `json:"received_by_id" gorm:"not null"`
	ReceivedBy   *User     `json:"received_by,omitempty" gorm:"foreignKey:ReceivedByID"`
}

// TableName 表名
func (p *Payment) TableName() string {
	return "payments"
}

// 支付方式常量
const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
	PaymentMethodUPI  = "UPI"
)

// 支付状态常量
const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

var paymentMethods = map[string]bool{
	PaymentMethodCash: true,
	PaymentMethodCard: true,
	PaymentMethodUPI:  true,
}

// IsValidPaymentMethod 检查支付方式是否合法
func IsValidPaymentMethod(method string) bool {
	return paymentMethods[method]
}
