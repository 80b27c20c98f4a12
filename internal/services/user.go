package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clinicore/internal/models"

	"gorm.io/gorm"
)

// 员工管理相关业务错误
var (
	ErrSelfEdit    = errors.New("不能通过员工管理操作自己的账号")
	ErrInvalidRole = errors.New("非法的员工角色")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ValidateStaffParams 校验员工参数
func (s *UserService) ValidateStaffParams(name, email, password, role string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return fmt.Errorf("姓名长度需在2-100之间")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("邮箱格式错误")
	}
	if password != "" && len(password) < 6 {
		return fmt.Errorf("密码长度至少6位")
	}
	// 员工管理入口只能创建诊所内角色，平台管理员不经此入口
	if !models.IsClinicRole(role) {
		return ErrInvalidRole
	}
	return nil
}

// CreateStaff 创建员工（诊所管理员操作）
func (s *UserService) CreateStaff(clinicID uint, name, email, password, role string, phone *string) (*models.User, error) {
	if err := s.ValidateStaffParams(name, email, password, role); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("密码不能为空")
	}

	// 检查邮箱是否重复
	var emailCount int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&emailCount).Error; err != nil {
		return nil, err
	}
	if emailCount > 0 {
		return nil, fmt.Errorf("邮箱已存在")
	}

	user := &models.User{
		ClinicID: &clinicID,
		Name:     name,
		Email:    email,
		Role:     role,
		Phone:    phone,
		Status:   models.UserStatusActive,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	err := s.db.Create(user).Error
	return user, err
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return &user, err
}

// GetByEmail 根据邮箱获取用户
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

// GetClinicStaff 获取诊所内指定员工（租户隔离）
func (s *UserService) GetClinicStaff(clinicID, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ? AND clinic_id = ?", userID, clinicID).First(&user).Error
	return &user, err
}

// ListByClinic 获取诊所员工列表（分页）
func (s *UserService) ListByClinic(clinicID uint, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("clinic_id = ?", clinicID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// UpdateStaff 更新员工信息（禁止操作自己，防止自锁）
func (s *UserService) UpdateStaff(clinicID, actorID, targetID uint, name, role, password string, phone *string) (*models.User, error) {
	if actorID == targetID {
		return nil, ErrSelfEdit
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, fmt.Errorf("姓名长度需在2-100之间")
	}
	if !models.IsClinicRole(role) {
		return nil, ErrInvalidRole
	}
	if password != "" && len(password) < 6 {
		return nil, fmt.Errorf("密码长度至少6位")
	}

	var user models.User
	if err := s.db.Where("id = ? AND clinic_id = ?", targetID, clinicID).First(&user).Error; err != nil {
		return nil, err
	}

	user.Name = name
	user.Role = role
	user.Phone = phone
	if password != "" {
		if err := user.SetPassword(password); err != nil {
			return nil, fmt.Errorf("密码加密失败: %v", err)
		}
	}

	err := s.db.Save(&user).Error
	return &user, err
}

// DeactivateStaff 停用员工（禁止操作自己）
// 已签发的令牌在自然过期前仍然有效，此为有意的无状态设计
func (s *UserService) DeactivateStaff(clinicID, actorID, targetID uint) (*models.User, error) {
	if actorID == targetID {
		return nil, ErrSelfEdit
	}

	var user models.User
	if err := s.db.Where("id = ? AND clinic_id = ?", targetID, clinicID).First(&user).Error; err != nil {
		return nil, err
	}

	user.Status = models.UserStatusInactive
	err := s.db.Save(&user).Error
	return &user, err
}

// ActivateStaff 重新启用员工
func (s *UserService) ActivateStaff(clinicID, actorID, targetID uint) (*models.User, error) {
	if actorID == targetID {
		return nil, ErrSelfEdit
	}

	var user models.User
	if err := s.db.Where("id = ? AND clinic_id = ?", targetID, clinicID).First(&user).Error; err != nil {
		return nil, err
	}

	user.Status = models.UserStatusActive
	err := s.db.Save(&user).Error
	return &user, err
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", &now).Error
}
