package handlers

import (
	"errors"
	"strconv"
	"time"

	"clinicore/internal/middleware"
	"clinicore/internal/services"
	"clinicore/pkg/pagination"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FollowUpHandler struct {
	followUpService *services.FollowUpService
}

func NewFollowUpHandler(followUpService *services.FollowUpService) *FollowUpHandler {
	return &FollowUpHandler{followUpService: followUpService}
}

type CreateFollowUpRequest struct {
	PatientID uint    `json:"patient_id" binding:"required"`
	DueDate   string  `json:"due_date" binding:"required"` // YYYY-MM-DD
	Reason    string  `json:"reason" binding:"required"`
	Notes     *string `json:"notes"`
}

// Create 创建随访任务
func (h *FollowUpHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreateFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		response.BadRequest(c, "日期格式错误，应为YYYY-MM-DD")
		return
	}

	followUp, err := h.followUpService.Create(claims.ClinicID, req.PatientID, dueDate, req.Reason, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrPatientNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, followUp)
}

// List 随访列表，支持按状态过滤
func (h *FollowUpHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	followUps, total, err := h.followUpService.GetWithFiltersAndPage(claims.ClinicID, status, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询随访列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, followUps, pageInfo)
}

// Get 随访详情
func (h *FollowUpHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的随访ID")
		return
	}

	followUp, err := h.followUpService.GetByID(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "随访任务不存在")
		return
	}

	response.Success(c, followUp)
}

type UpdateFollowUpStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// UpdateStatus 流转随访状态
func (h *FollowUpHandler) UpdateStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的随访ID")
		return
	}

	var req UpdateFollowUpStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	followUp, err := h.followUpService.UpdateStatus(claims.ClinicID, uint(id), req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "随访任务不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, followUp)
}

// Delete 删除随访任务
func (h *FollowUpHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的随访ID")
		return
	}

	if err := h.followUpService.Delete(claims.ClinicID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "随访任务不存在")
			return
		}
		response.ServerError(c, "删除随访任务失败")
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
