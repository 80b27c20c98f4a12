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

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

type CreateItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Unit        string   `json:"unit" binding:"required"`
	Quantity    int      `json:"quantity" binding:"gte=0"`
	MinQuantity int      `json:"min_quantity" binding:"gte=0"`
	Cost        *float64 `json:"cost"`
	Supplier    *string  `json:"supplier"`
	Notes       *string  `json:"notes"`
}

// CreateItem 建立库存物品档案（初始库存作为一笔入库流水记录）
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, err := h.inventoryService.CreateItem(claims.ClinicID, &services.CreateItemRequest{
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Cost:        req.Cost,
		Supplier:    req.Supplier,
		Notes:       req.Notes,
	}, claims.UserID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, item)
}

// ListItems 库存列表，支持分类/关键字/仅低库存过滤
func (h *InventoryHandler) ListItems(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)
	category := c.Query("category")
	keyword := c.Query("keyword")
	lowStockOnly := c.Query("low_stock") == "true"

	items, total, err := h.inventoryService.ListItems(claims.ClinicID, category, keyword, lowStockOnly, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询库存列表失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, items, pageInfo)
}

// GetItem 物品详情
func (h *InventoryHandler) GetItem(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的物品ID")
		return
	}

	item, err := h.inventoryService.GetItem(claims.ClinicID, uint(id))
	if err != nil {
		response.NotFound(c, "物品不存在")
		return
	}

	response.Success(c, item)
}

type UpdateItemRequest struct {
	Name        string   `json:"name" binding:"required"`
	Unit        string   `json:"unit" binding:"required"`
	MinQuantity int      `json:"min_quantity" binding:"gte=0"`
	Cost        *float64 `json:"cost"`
	Supplier    *string  `json:"supplier"`
	Notes       *string  `json:"notes"`
}

// UpdateItem 更新物品档案 - 库存数量只能通过流水变动，不在此处接收
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的物品ID")
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, err := h.inventoryService.UpdateItem(claims.ClinicID, uint(id), req.Name, req.Unit, req.MinQuantity, req.Cost, req.Supplier, req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "物品不存在")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, item)
}

type CreateTransactionRequest struct {
	Type     string  `json:"type" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Reason   *string `json:"reason"`
}

// CreateTransaction 记录库存流水并原子更新库存量
func (h *InventoryHandler) CreateTransaction(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的物品ID")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, record, err := h.inventoryService.ApplyTransaction(claims.ClinicID, uint(id), req.Type, req.Quantity, req.Reason, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrZeroQuantity):
			response.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrInsufficientStock):
			response.Conflict(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "物品不存在")
		default:
			response.BadRequest(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{
		"item":        item,
		"transaction": record,
	})
}

// ListTransactions 物品流水账
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	params := pagination.ParsePageParams(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的物品ID")
		return
	}

	records, total, err := h.inventoryService.ListTransactions(claims.ClinicID, uint(id), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询库存流水失败")
		return
	}

	pageInfo := pagination.NewPageInfo(params.Page, params.PageSize, total)
	response.SuccessWithPage(c, records, pageInfo)
}
