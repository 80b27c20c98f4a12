package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"not null;size:100"`
	Email        string     `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Role         string     `json:"role" gorm:"not null;size:20;index"`
	Phone        *string    `json:"phone" gorm:"size:20"`
	Status       string     `json:"status" gorm:"default:'active';size:20"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// 平台管理员无诊所归属，其他角色有且仅有一个诊所，创建后不可变
	ClinicID *uint   `json:"clinic_id" gorm:"index"`
	Clinic   *Clinic `json:"clinic,omitempty" gorm:"foreignKey:ClinicID"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 角色常量
const (
	RoleSuperAdmin   = "SUPER_ADMIN"  // 平台管理员
	RoleAdmin        = "ADMIN"        // 诊所管理员
	RoleReceptionist = "RECEPTIONIST" // 前台
	RoleNurse        = "NURSE"        // 护士
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

var clinicRoles = map[string]bool{
	RoleAdmin:        true,
	RoleReceptionist: true,
	RoleNurse:        true,
}

// IsClinicRole 检查是否是诊所内角色（非平台管理员）
func IsClinicRole(role string) bool {
	return clinicRoles[role]
}

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsActive 检查用户是否激活
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
