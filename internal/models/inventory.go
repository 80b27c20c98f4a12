package models

// InventoryItem 库存物品模型
// quantity 不变式：任何时刻 >= 0，且等于该物品全部流水delta之和；
// 只能通过台账的ApplyTransaction变更，禁止直接改写
type InventoryItem struct {
	BaseModel
	ClinicID    uint     `json:"clinic_id" gorm:"not null;index"`
	Name        string   `json:"name" gorm:"not null;size:150"`
	Category    string   `json:"category" gorm:"not null;size:20;index"`
	Unit        string   `json:"unit" gorm:"not null;size:20"`
	Quantity    int      `json:"quantity" gorm:"not null;default:0"`
	MinQuantity int      `json:"min_quantity" gorm:"not null;default:0"` // 补货阈值
	Cost        *float64 `json:"cost" gorm:"type:numeric(10,2)"`
	Supplier    *string  `json:"supplier" gorm:"size:150"`
	Notes       *string  `json:"notes" gorm:"size:255"`
	Status      string   `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (i *InventoryItem) TableName() string {
	return "inventory_items"
}

// InventoryTransaction 库存流水模型 - 只追加，不修改不删除
type InventoryTransaction struct {
	BaseModel
	ClinicID      uint           `json:"clinic_id" gorm:"not null;index"`
	ItemID        uint           `json:"item_id" gorm:"not null;index"`
	Item          *InventoryItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Type          string         `json:"type" gorm:"not null;size:20"`
	Quantity      int            `json:"quantity" gorm:"not null"` // 带符号的实际变动量
	Reason        *string        `json:"reason" gorm:"size:255"`
	PerformedByID uint           `json:"performed_by_id" gorm:"not null"`
	PerformedBy   *User          `json:"performed_by,omitempty" gorm:"foreignKey:PerformedByID"`
}

// TableName 表名
func (t *InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// 物品分类常量
const (
	ItemCategoryMedicine   = "MEDICINE"
	ItemCategoryConsumable = "CONSUMABLE"
	ItemCategoryCleaning   = "CLEANING"
	ItemCategoryEquipment  = "EQUIPMENT"
)

// 流水类型常量
const (
	TransactionTypeStockIn  = "STOCK_IN" // 入库：+|数量|
	TransactionTypeUsed     = "USED"     // 消耗：-|数量|
	TransactionTypeAdjusted = "ADJUSTED" // 调整：按符号直接应用
	TransactionTypeReturned = "RETURNED" // 退回：+|数量|
)

// 库存物品状态常量
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
)

var itemCategories = map[string]bool{
	ItemCategoryMedicine:   true,
	ItemCategoryConsumable: true,
	ItemCategoryCleaning:   true,
	ItemCategoryEquipment:  true,
}

var transactionTypes = map[string]bool{
	TransactionTypeStockIn:  true,
	TransactionTypeUsed:     true,
	TransactionTypeAdjusted: true,
	TransactionTypeReturned: true,
}

// IsValidItemCategory 检查物品分类是否合法
func IsValidItemCategory(category string) bool {
	return itemCategories[category]
}

// IsValidTransactionType 检查流水类型是否合法
func IsValidTransactionType(txType string) bool {
	return transactionTypes[txType]
}
