package handlers

import (
	"errors"
	"strconv"

	"clinicore/internal/middleware"
	"clinicore/internal/services"
	"clinicore/pkg/pagination"
	"clinicore/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PatientHandler struct {
	patientService *services.PatientService
}

func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

type PatientRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Email        *string `json:"email"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	MedicalNotes *string `json:"medical_notes"`
}

// Create 建档患者
func (h *PatientHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	patient, err := h.patientService.Create(claims.ClinicID, req.Name, req.Phone, req.Email, req.Age, req.Gender, req.MedicalNotes)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, patient)
}

// List 患者列表，支持姓名/电话搜索
func (h *PatientHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	patients, total, err := h.patientService.GetWithFiltersAndPage(claims.ClinicID, keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询患者列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, patients, pageInfo)
}

// Get 患者详情
func (h *PatientHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的患者ID")
		return
	}

	patient, err := h.patientService.GetByID(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "患者不存在")
		return
	}

	response.Success(c, patient)
}

// Update 更新患者资料
func (h *PatientHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的患者ID")
		return
	}

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	patient, err := h.patientService.Update(claims.ClinicID, uint(id), req.Name, req.Phone, req.Email, req.Age, req.Gender, req.MedicalNotes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "患者不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, patient)
}

// Delete 删除患者
func (h *PatientHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的患者ID")
		return
	}

	if err := h.patientService.Delete(claims.ClinicID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "患者不存在")
			return
		}
		response.ServerError(c, "删除患者失败")
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
