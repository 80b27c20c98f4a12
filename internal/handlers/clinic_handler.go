package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/pkg/pagination"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ClinicHandler struct {
	clinicService *services.ClinicService
}

func NewClinicHandler(clinicService *services.ClinicService) *ClinicHandler {
	return &ClinicHandler{clinicService: clinicService}
}

type SignupRequest struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug" binding:"required"`
	Abbreviation  string `json:"abbreviation" binding:"required"`
	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=6"`
}

// Signup 注册诊所 - 公开端点，同事务创建诊所和管理员
func (h *ClinicHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败"
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Name":
					errorMsg = "诊所名称不能为空"
				case "Slug":
					errorMsg = "诊所标识不能为空"
				case "Abbreviation":
					errorMsg = "诊所缩写不能为空"
				case "AdminEmail":
					errorMsg = "管理员邮箱格式错误"
				case "AdminPassword":
					errorMsg = "管理员密码长度至少6位"
				default:
					errorMsg = fmt.Sprintf("字段 %s 验证失败", fieldErr.Field())
				}
				break // 只返回第一个错误
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "请求参数格式错误")
		return
	}

	clinic, admin, err := h.clinicService.Signup(&services.SignupRequest{
		Name:          req.Name,
		Slug:          req.Slug,
		Abbreviation:  req.Abbreviation,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		if errors.Is(err, services.ErrSlugTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"clinic": clinic,
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"role":  admin.Role,
		},
	})
}

// PublicInfo 按子域返回诊所公开信息，供登录页渲染
func (h *ClinicHandler) PublicInfo(c *gin.Context) {
	slug := middleware.GetTenantSlug(c)
	if slug == "" {
		response.NotFound(c, "诊所不存在")
		return
	}

	clinic, err := h.clinicService.GetBySlug(slug)
	if err != nil {
		response.NotFound(c, "诊所不存在")
		return
	}

	response.Success(c, gin.H{
		"name":       clinic.Name,
		"slug":       clinic.Slug,
		"tagline":    clinic.Tagline,
		"phone":      clinic.Phone,
		"address":    clinic.Address,
		"city":       clinic.City,
		"status":     clinic.Status,
		"time_slots": clinic.TimeSlots,
		"doctors":    clinic.Doctors,
	})
}

// List 诊所列表（平台管理）
func (h *ClinicHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	status := c.Query("status")
	keyword := c.Query("keyword")

	clinics, total, err := h.clinicService.GetWithFiltersAndPage(status, keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询诊所列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, clinics, pageInfo)
}

// Get 诊所详情（平台管理）
func (h *ClinicHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的诊所ID")
		return
	}

	clinic, err := h.clinicService.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "诊所不存在")
		return
	}

	response.Success(c, clinic)
}

type UpdateClinicRequest struct {
	Name    string  `json:"name" binding:"required"`
	Tagline *string `json:"tagline"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

// Update 更新诊所资料 - slug创建后不可变，不在此处接收
func (h *ClinicHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的诊所ID")
		return
	}

	var req UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	clinic, err := h.clinicService.Update(uint(id), req.Name, req.Tagline, req.Phone, req.Email, req.Address, req.City)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "诊所不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, clinic)
}

type UpdateFeaturesRequest struct {
	Features map[string]bool `json:"features" binding:"required"`
}

// UpdateFeatures 更新功能开关 - 未知功能标识整体拒绝
func (h *ClinicHandler) UpdateFeatures(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的诊所ID")
		return
	}

	var req UpdateFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	clinic, err := h.clinicService.UpdateFeatures(uint(id), req.Features)
	if err != nil {
		if errors.Is(err, services.ErrUnknownFeature) {
			response.BadRequest(c, err.Error())
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "诊所不存在")
			return
		}
		response.ServerError(c, "更新功能开关失败")
		return
	}

	response.Success(c, clinic)
}

// Activate 启用诊所
func (h *ClinicHandler) Activate(c *gin.Context) {
	h.setStatus(c, true)
}

// Deactivate 停用诊所
func (h *ClinicHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, false)
}

func (h *ClinicHandler) setStatus(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的诊所ID")
		return
	}

	var clinic *models.Clinic
	if active {
		clinic, err = h.clinicService.Activate(uint(id))
	} else {
		clinic, err = h.clinicService.Deactivate(uint(id))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "诊所不存在")
			return
		}
		response.ServerError(c, "更新诊所状态失败")
		return
	}

	response.Success(c, clinic)
}

// Stats 平台统计
func (h *ClinicHandler) Stats(c *gin.Context) {
	stats, err := h.clinicService.GetStats()
	if err != nil {
		response.ServerError(c, "查询统计数据失败")
		return
	}

	response.Success(c, stats)
}

// Features 返回当前诊所的功能开关映射
func (h *ClinicHandler) Features(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Unauthorized(c, "请先登录")
		return
	}

	features, err := h.clinicService.FeatureMap(c.Request.Context(), claims.ClinicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "诊所不存在")
			return
		}
		response.ServerError(c, "查询功能开关失败")
		return
	}

	response.Success(c, features)
}
