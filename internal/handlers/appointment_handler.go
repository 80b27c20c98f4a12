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

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

type CreateAppointmentRequest struct {
	PatientID uint    `json:"patient_id" binding:"required"`
	Date      string  `json:"date" binding:"required"` // YYYY-MM-DD
	TimeSlot  string  `json:"time_slot" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Doctor    string  `json:"doctor" binding:"required"`
	Notes     *string `json:"notes"`
}

// Create 创建预约
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "日期格式错误，应为YYYY-MM-DD")
		return
	}

	appointment, err := h.appointmentService.Create(claims.ClinicID, &services.CreateAppointmentRequest{
		PatientID: req.PatientID,
		Date:      date,
		TimeSlot:  req.TimeSlot,
		Type:      req.Type,
		Doctor:    req.Doctor,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrPatientNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, appointment)
}

// List 预约列表，支持按日期和状态过滤
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)
	status := c.Query("status")

	var date *time.Time
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.BadRequest(c, "日期格式错误，应为YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	appointments, total, err := h.appointmentService.GetWithFiltersAndPage(claims.ClinicID, date, status, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询预约列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, appointments, pageInfo)
}

// Get 预约详情
func (h *AppointmentHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的预约ID")
		return
	}

	appointment, err := h.appointmentService.GetByID(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "预约不存在")
		return
	}

	response.Success(c, appointment)
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 流转预约状态
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的预约ID")
		return
	}

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	appointment, err := h.appointmentService.UpdateStatus(claims.ClinicID, uint(id), req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "预约不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, appointment)
}

type UpdateAppointmentRequest struct {
	Date     string  `json:"date" binding:"required"`
	TimeSlot string  `json:"time_slot" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Doctor   string  `json:"doctor" binding:"required"`
	Notes    *string `json:"notes"`
}

// Update 改期或调整预约
func (h *AppointmentHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的预约ID")
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "日期格式错误，应为YYYY-MM-DD")
		return
	}

	appointment, err := h.appointmentService.Update(claims.ClinicID, uint(id), date, req.TimeSlot, req.Type, req.Doctor, req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "预约不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, appointment)
}

// Delete 删除预约
func (h *AppointmentHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的预约ID")
		return
	}

	if err := h.appointmentService.Delete(claims.ClinicID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "预约不存在")
			return
		}
		response.ServerError(c, "删除预约失败")
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
