package models

import (
	"gorm.io/datatypes"
)

// Clinic 诊所（租户）模型 - 贫血模型，只包含数据结构
type Clinic struct {
	BaseModel
	Name         string  `json:"name" gorm:"not null;size:150"`
	Slug         string  `json:"slug" gorm:"unique;not null;size:50;index"` // 子域名标识，创建后不可变
	Abbreviation string  `json:"abbreviation" gorm:"not null;size:10"`      // 收据号前缀
	Tagline      *string `json:"tagline" gorm:"size:255"`
	Phone        *string `json:"phone" gorm:"size:20"`
	Email        *string `json:"email" gorm:"size:100"`
	Address      *string `json:"address" gorm:"size:255"`
	City         *string `json:"city" gorm:"size:100"`
	Plan         string  `json:"plan" gorm:"default:'basic';size:20"`
	Status       string  `json:"status" gorm:"default:'active';size:20"`

	// JSON列：出诊时段、医生列表、功能开关映射
	TimeSlots       datatypes.JSON    `json:"time_slots" gorm:"type:jsonb"`
	Doctors         datatypes.JSON    `json:"doctors" gorm:"type:jsonb"`
	EnabledFeatures datatypes.JSONMap `json:"enabled_features" gorm:"type:jsonb"`
}

// TableName 表名
func (c *Clinic) TableName() string {
	return "clinics"
}

// 诊所状态常量
const (
	ClinicStatusActive   = "active"
	ClinicStatusInactive = "inactive"
)

// 功能开关封闭枚举 - 未知键一律拒绝
const (
	FeaturePatients     = "patients"
	FeatureAppointments = "appointments"
	FeaturePayments     = "payments"
	FeatureFollowUps    = "followups"
	FeatureInventory    = "inventory"
	FeatureReports      = "reports"
)

var knownFeatures = map[string]bool{
	FeaturePatients:     true,
	FeatureAppointments: true,
	FeaturePayments:     true,
	FeatureFollowUps:    true,
	FeatureInventory:    true,
	FeatureReports:      true,
}

// IsKnownFeature 检查功能标识是否在封闭枚举内
func IsKnownFeature(key string) bool {
	return knownFeatures[key]
}

// AllFeatures 返回全部已知功能标识
func AllFeatures() []string {
	return []string{
		FeaturePatients,
		FeatureAppointments,
		FeaturePayments,
		FeatureFollowUps,
		FeatureInventory,
		FeatureReports,
	}
}

// HasFeature 检查诊所是否启用指定功能
// 未知键、缺失键、非布尔值一律视为未启用
func (c *Clinic) HasFeature(key string) bool {
	if !IsKnownFeature(key) {
		return false
	}
	if c.EnabledFeatures == nil {
		return false
	}
	enabled, ok := c.EnabledFeatures[key].(bool)
	return ok && enabled
}
