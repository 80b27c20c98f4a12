package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"clinicore/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 诊所相关业务错误
var (
	ErrSlugTaken      = errors.New("诊所标识已被占用")
	ErrUnknownFeature = errors.New("未知的功能标识")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

type ClinicService struct {
	db           *gorm.DB
	featureCache *FeatureCache
}

// ClinicStats 诊所统计信息
type ClinicStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Users    int64 `json:"users"`
	Patients int64 `json:"patients"`
}

func NewClinicService(db *gorm.DB) *ClinicService {
	return &ClinicService{db: db}
}

// WithFeatureCache 挂载功能开关缓存
func (s *ClinicService) WithFeatureCache(cache *FeatureCache) *ClinicService {
	s.featureCache = cache
	return s
}

// SignupRequest 诊所注册参数
type SignupRequest struct {
	Name          string
	Slug          string
	Abbreviation  string
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// ValidateSignupParams 校验注册参数
func (s *ClinicService) ValidateSignupParams(req *SignupRequest) error {
	if n := utf8.RuneCountInString(req.Name); n < 2 || n > 150 {
		return fmt.Errorf("诊所名称长度需在2-150之间")
	}
	if n := len(req.Slug); n < 2 || n > 50 || !slugPattern.MatchString(req.Slug) {
		return fmt.Errorf("诊所标识需为2-50位小写字母、数字或连字符")
	}
	if n := len(req.Abbreviation); n < 2 || n > 10 {
		return fmt.Errorf("诊所缩写长度需在2-10之间")
	}
	if n := utf8.RuneCountInString(req.AdminName); n < 2 || n > 100 {
		return fmt.Errorf("管理员姓名长度需在2-100之间")
	}
	if len(req.AdminPassword) < 6 {
		return fmt.Errorf("密码长度至少6位")
	}
	return nil
}

// Signup 注册诊所并创建首个管理员（同一事务）
func (s *ClinicService) Signup(req *SignupRequest) (*models.Clinic, *models.User, error) {
	if err := s.ValidateSignupParams(req); err != nil {
		return nil, nil, err
	}

	// 默认开启全部功能
	features := datatypes.JSONMap{}
	for _, key := range models.AllFeatures() {
		features[key] = true
	}

	clinic := &models.Clinic{
		Name:            req.Name,
		Slug:            req.Slug,
		Abbreviation:    req.Abbreviation,
		Status:          models.ClinicStatusActive,
		EnabledFeatures: features,
	}

	admin := &models.User{
		Name:   req.AdminName,
		Email:  req.AdminEmail,
		Role:   models.RoleAdmin,
		Status: models.UserStatusActive,
	}
	if err := admin.SetPassword(req.AdminPassword); err != nil {
		return nil, nil, fmt.Errorf("密码加密失败: %v", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// slug全局唯一
		var count int64
		if err := tx.Model(&models.Clinic{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}

		var emailCount int64
		if err := tx.Model(&models.User{}).Where("email = ?", req.AdminEmail).Count(&emailCount).Error; err != nil {
			return err
		}
		if emailCount > 0 {
			return fmt.Errorf("邮箱已存在")
		}

		if err := tx.Create(clinic).Error; err != nil {
			return err
		}

		admin.ClinicID = &clinic.ID
		return tx.Create(admin).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return clinic, admin, nil
}

// GetByID 根据ID获取诊所
func (s *ClinicService) GetByID(id uint) (*models.Clinic, error) {
	var clinic models.Clinic
	err := s.db.First(&clinic, id).Error
	return &clinic, err
}

// GetBySlug 根据子域名标识获取诊所
func (s *ClinicService) GetBySlug(slug string) (*models.Clinic, error) {
	var clinic models.Clinic
	err := s.db.Where("slug = ?", slug).First(&clinic).Error
	return &clinic, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *ClinicService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Clinic, int64, error) {
	var clinics []*models.Clinic
	var total int64

	query := s.db.Model(&models.Clinic{})

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR slug LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&clinics).Error
	if err != nil {
		return nil, 0, err
	}

	return clinics, total, nil
}

// Update 更新诊所基础信息（slug不可变）
func (s *ClinicService) Update(id uint, name string, tagline, phone, email, address, city *string) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := s.db.First(&clinic, id).Error; err != nil {
		return nil, err
	}

	if name != "" {
		clinic.Name = name
	}
	clinic.Tagline = tagline
	clinic.Phone = phone
	clinic.Email = email
	clinic.Address = address
	clinic.City = city

	err := s.db.Save(&clinic).Error
	return &clinic, err
}

// UpdateFeatures 更新功能开关（仅接受封闭枚举内的键）
func (s *ClinicService) UpdateFeatures(id uint, features map[string]bool) (*models.Clinic, error) {
	for key := range features {
		if !models.IsKnownFeature(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, key)
		}
	}

	var clinic models.Clinic
	if err := s.db.First(&clinic, id).Error; err != nil {
		return nil, err
	}

	merged := datatypes.JSONMap{}
	for key, enabled := range clinic.EnabledFeatures {
		merged[key] = enabled
	}
	for key, enabled := range features {
		merged[key] = enabled
	}
	clinic.EnabledFeatures = merged

	if err := s.db.Save(&clinic).Error; err != nil {
		return nil, err
	}

	s.featureCache.Invalidate(context.Background(), id)
	return &clinic, nil
}

// Activate 激活诊所
func (s *ClinicService) Activate(id uint) (*models.Clinic, error) {
	return s.setStatus(id, models.ClinicStatusActive)
}

// Deactivate 停用诊所（软删除，已签发令牌在自然过期前仍有效）
func (s *ClinicService) Deactivate(id uint) (*models.Clinic, error) {
	return s.setStatus(id, models.ClinicStatusInactive)
}

func (s *ClinicService) setStatus(id uint, status string) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := s.db.First(&clinic, id).Error; err != nil {
		return nil, err
	}

	clinic.Status = status
	if err := s.db.Save(&clinic).Error; err != nil {
		return nil, err
	}

	s.featureCache.Invalidate(context.Background(), id)
	return &clinic, nil
}

// FeatureMap 获取诊所的功能开关映射（缓存优先，回源数据库）
func (s *ClinicService) FeatureMap(ctx context.Context, clinicID uint) (map[string]bool, error) {
	if cached := s.featureCache.Get(ctx, clinicID); cached != nil {
		return cached, nil
	}

	var clinic models.Clinic
	if err := s.db.Select("id", "enabled_features").First(&clinic, clinicID).Error; err != nil {
		return nil, err
	}

	features := make(map[string]bool, len(models.AllFeatures()))
	for _, key := range models.AllFeatures() {
		features[key] = clinic.HasFeature(key)
	}

	s.featureCache.Set(ctx, clinicID, features)
	return features, nil
}

// HasFeature 检查诊所是否启用指定功能
// 诊所不存在返回 gorm.ErrRecordNotFound；未知键一律视为未启用
func (s *ClinicService) HasFeature(ctx context.Context, clinicID uint, feature string) (bool, error) {
	if !models.IsKnownFeature(feature) {
		return false, nil
	}

	features, err := s.FeatureMap(ctx, clinicID)
	if err != nil {
		return false, err
	}
	return features[feature], nil
}

// GetStats 平台统计信息
func (s *ClinicService) GetStats() (*ClinicStats, error) {
	var stats ClinicStats

	if err := s.db.Model(&models.Clinic{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Clinic{}).Where("status = ?", models.ClinicStatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active

	if err := s.db.Model(&models.User{}).Where("clinic_id IS NOT NULL").Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Patient{}).Count(&stats.Patients).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
