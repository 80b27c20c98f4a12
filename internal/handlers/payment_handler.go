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
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type CreatePaymentRequest struct {
	PatientID   uint    `json:"patient_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Method      string  `json:"method" binding:"required"`
	Description *string `json:"description"`
	Date        *string `json:"date"` // 可选，默认当天
}

// Create 记录收费并自动发放收据号
func (h *PaymentHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			response.BadRequest(c, "日期格式错误，应为YYYY-MM-DD")
			return
		}
		date = &parsed
	}

	payment, err := h.paymentService.Create(claims.ClinicID, claims.UserID, &services.CreatePaymentRequest{
		PatientID:   req.PatientID,
		Amount:      req.Amount,
		Method:      req.Method,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPatientNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, services.ErrReceiptConflict):
			response.Conflict(c, err.Error())
		default:
			response.BadRequest(c, err.Error())
		}
		return
	}

	response.Success(c, payment)
}

// List 收费列表，支持日期区间和支付方式过滤，附带区间合计
func (h *PaymentHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)
	method := c.Query("method")

	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			response.BadRequest(c, "起始日期格式错误，应为YYYY-MM-DD")
			return
		}
		from = &parsed
	}
	if toStr := c.Query("to"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			response.BadRequest(c, "结束日期格式错误，应为YYYY-MM-DD")
			return
		}
		to = &parsed
	}

	payments, total, sum, err := h.paymentService.ListWithFilters(claims.ClinicID, from, to, method, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询收费列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, gin.H{
		"payments":     payments,
		"total_amount": sum,
	}, pageInfo)
}

// Get 收费详情
func (h *PaymentHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的收费ID")
		return
	}

	payment, err := h.paymentService.GetByID(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "收费记录不存在")
		return
	}

	response.Success(c, payment)
}

// NextReceipt 预览下一个收据号（只读，不占号）
func (h *PaymentHandler) NextReceipt(c *gin.Context) {
	claims := middleware.GetClaims(c)

	receipt, err := h.paymentService.NextReceiptNumber(claims.ClinicID)
	if err != nil {
		response.ServerError(c, "计算收据号失败")
		return
	}

	response.Success(c, gin.H{"receipt": receipt})
}
