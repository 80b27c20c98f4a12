package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"clinicore/internal/models"
	"clinicore/pkg/metrics"

	"gorm.io/gorm"
)

// 库存台账相关业务错误
var (
	ErrZeroQuantity      = errors.New("数量不能为0")
	ErrInsufficientStock = errors.New("库存不足")
)

type InventoryService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// WithNotifier 挂载事件通知器
func (s *InventoryService) WithNotifier(n *Notifier) *InventoryService {
	s.notifier = n
	return s
}

// DeriveDelta 根据流水类型推导带符号的变动量
// STOCK_IN/RETURNED 取正、USED 取负、ADJUSTED 按符号直接应用；0一律拒绝
func DeriveDelta(txType string, magnitude int) (int, error) {
	if magnitude == 0 {
		return 0, ErrZeroQuantity
	}
	if !models.IsValidTransactionType(txType) {
		return 0, fmt.Errorf("非法的流水类型: %s", txType)
	}

	abs := magnitude
	if abs < 0 {
		abs = -abs
	}

	switch txType {
	case models.TransactionTypeStockIn, models.TransactionTypeReturned:
		return abs, nil
	case models.TransactionTypeUsed:
		return -abs, nil
	default: // ADJUSTED
		return magnitude, nil
	}
}

// CreateItemRequest 新建物品参数
type CreateItemRequest struct {
	Name        string
	Category    string
	Unit        string
	Quantity    int
	MinQuantity int
	Cost        *float64
	Supplier    *string
	Notes       *string
}

// ValidateItemParams 校验物品参数
func (s *InventoryService) ValidateItemParams(req *CreateItemRequest) error {
	if n := utf8.RuneCountInString(req.Name); n < 1 || n > 150 {
		return fmt.Errorf("物品名称长度需在1-150之间")
	}
	if !models.IsValidItemCategory(req.Category) {
		return fmt.Errorf("非法的物品分类: %s", req.Category)
	}
	if req.Unit == "" {
		return fmt.Errorf("计量单位不能为空")
	}
	if req.Quantity < 0 {
		return fmt.Errorf("初始数量不能为负")
	}
	if req.MinQuantity < 0 {
		return fmt.Errorf("补货阈值不能为负")
	}
	return nil
}

// CreateItem 创建物品
// 初始数量大于0时在同一事务内记录一笔入库流水，保证台账不变式从物品诞生即成立
func (s *InventoryService) CreateItem(clinicID uint, req *CreateItemRequest, actorID uint) (*models.InventoryItem, error) {
	if err := s.ValidateItemParams(req); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		ClinicID:    clinicID,
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Cost:        req.Cost,
		Supplier:    req.Supplier,
		Notes:       req.Notes,
		Status:      models.ItemStatusActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}

		if req.Quantity > 0 {
			reason := "初始入库"
			record := &models.InventoryTransaction{
				ClinicID:      clinicID,
				ItemID:        item.ID,
				Type:          models.TransactionTypeStockIn,
				Quantity:      req.Quantity,
				Reason:        &reason,
				PerformedByID: actorID,
			}
			return tx.Create(record).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// ApplyTransaction 记账：读余额、算新值、写余额、追加流水，整体原子
// 结果为负时整笔拒绝，余额和流水都不落盘
func (s *InventoryService) ApplyTransaction(clinicID, itemID uint, txType string, magnitude int, reason *string, actorID uint) (*models.InventoryItem, *models.InventoryTransaction, error) {
	delta, err := DeriveDelta(txType, magnitude)
	if err != nil {
		return nil, nil, err
	}

	var item models.InventoryItem
	var record models.InventoryTransaction

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 先确认物品属于该诊所（租户隔离；跨租户猜测ID返回记录不存在）
		if err := tx.Where("id = ? AND clinic_id = ?", itemID, clinicID).First(&item).Error; err != nil {
			return err
		}

		// 数据库侧守卫条件保证并发下余额判断不会基于过期读取
		result := tx.Model(&models.InventoryItem{}).
			Where("id = ? AND clinic_id = ? AND quantity + ? >= 0", itemID, clinicID, delta).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		record = models.InventoryTransaction{
			ClinicID:      clinicID,
			ItemID:        itemID,
			Type:          txType,
			Quantity:      delta,
			Reason:        reason,
			PerformedByID: actorID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// 回读最新余额
		return tx.Where("id = ?", itemID).First(&item).Error
	})
	if err != nil {
		metrics.LedgerTransactionCounter.WithLabelValues(txType, "rejected").Inc()
		return nil, nil, err
	}

	metrics.LedgerTransactionCounter.WithLabelValues(txType, "applied").Inc()

	// 低于补货阈值时推送低库存事件
	if s.notifier != nil && item.Quantity <= item.MinQuantity {
		s.notifier.NotifyLowStock(&item)
	}

	return &item, &record, nil
}

// GetItem 获取诊所内指定物品（租户隔离）
func (s *InventoryService) GetItem(clinicID, itemID uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.Where("id = ? AND clinic_id = ?", itemID, clinicID).First(&item).Error
	return &item, err
}

// ListItems 物品列表（支持分类筛选、关键词搜索、仅看低库存）
func (s *InventoryService) ListItems(clinicID uint, category, keyword string, lowStockOnly bool, page, pageSize int) ([]*models.InventoryItem, int64, error) {
	var items []*models.InventoryItem
	var total int64

	query := s.db.Model(&models.InventoryItem{}).Where("clinic_id = ?", clinicID)

	if category != "" && models.IsValidItemCategory(category) {
		query = query.Where("category = ?", category)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR supplier LIKE ?", searchPattern, searchPattern)
	}
	if lowStockOnly {
		query = query.Where("quantity <= min_quantity")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateItem 更新物品非数量字段；quantity只能走ApplyTransaction
func (s *InventoryService) UpdateItem(clinicID, itemID uint, name, unit string, minQuantity int, cost *float64, supplier, notes *string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.Where("id = ? AND clinic_id = ?", itemID, clinicID).First(&item).Error; err != nil {
		return nil, err
	}

	if name != "" {
		item.Name = name
	}
	if unit != "" {
		item.Unit = unit
	}
	if minQuantity >= 0 {
		item.MinQuantity = minQuantity
	}
	item.Cost = cost
	item.Supplier = supplier
	item.Notes = notes

	err := s.db.Save(&item).Error
	return &item, err
}

// ListTransactions 物品流水历史（按时间倒序，分页）
func (s *InventoryService) ListTransactions(clinicID, itemID uint, page, pageSize int) ([]*models.InventoryTransaction, int64, error) {
	// 先确认物品属于该诊所
	if _, err := s.GetItem(clinicID, itemID); err != nil {
		return nil, 0, err
	}

	var records []*models.InventoryTransaction
	var total int64

	query := s.db.Model(&models.InventoryTransaction{}).
		Where("clinic_id = ? AND item_id = ?", clinicID, itemID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("PerformedBy").
		Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// CountLowStock 低库存物品数量（仪表盘用）
func (s *InventoryService) CountLowStock(clinicID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.InventoryItem{}).
		Where("clinic_id = ? AND status = ? AND quantity <= min_quantity", clinicID, models.ItemStatusActive).
		Count(&count).Error
	return count, err
}
