package handlers

import (
	"errors"
	"strconv"

	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/pkg/pagination"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler 员工管理 - 全部操作限定在当前诊所内，且不允许操作自己
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateStaffRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Role     string  `json:"role" binding:"required"`
	Phone    *string `json:"phone"`
}

// Create 创建员工
func (h *UserHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.CreateStaff(claims.ClinicID, req.Name, req.Email, req.Password, req.Role, req.Phone)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRole) {
			response.BadRequest(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, user)
}

// List 员工列表
func (h *UserHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)

	users, total, err := h.userService.ListByClinic(claims.ClinicID, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询员工列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// Get 员工详情
func (h *UserHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的员工ID")
		return
	}

	user, err := h.userService.GetClinicStaff(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "员工不存在")
		return
	}

	response.Success(c, user)
}

type UpdateStaffRequest struct {
	Name     string  `json:"name" binding:"required"`
	Role     string  `json:"role" binding:"required"`
	Password string  `json:"password"` // 为空表示不修改密码
	Phone    *string `json:"phone"`
}

// Update 更新员工
func (h *UserHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的员工ID")
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.UpdateStaff(claims.ClinicID, claims.UserID, uint(id), req.Name, req.Role, req.Password, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfEdit):
			response.Forbidden(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "员工不存在")
		default:
			response.BadRequest(c, err.Error())
		}
		return
	}

	response.Success(c, user)
}

// Deactivate 停用员工
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, false)
}

// Activate 启用员工
func (h *UserHandler) Activate(c *gin.Context) {
	h.setStatus(c, true)
}

func (h *UserHandler) setStatus(c *gin.Context, active bool) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的员工ID")
		return
	}

	var svcErr error
	var user *models.User
	if active {
		user, svcErr = h.userService.ActivateStaff(claims.ClinicID, claims.UserID, uint(id))
	} else {
		user, svcErr = h.userService.DeactivateStaff(claims.ClinicID, claims.UserID, uint(id))
	}
	if svcErr != nil {
		switch {
		case errors.Is(svcErr, services.ErrSelfEdit):
			response.Forbidden(c, svcErr.Error())
		case errors.Is(svcErr, gorm.ErrRecordNotFound):
			response.NotFound(c, "员工不存在")
		default:
			response.ServerError(c, "更新员工状态失败")
		}
		return
	}

	response.Success(c, user)
}
