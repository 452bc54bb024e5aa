package models

import (
	"time"
)

// User - An account that can log into the dashboard
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // Role name, e.g. 'superadmin', 'cashier'
	OutletID     *uint     `json:"outlet_id"`
	Status       string    `gorm:"default:active" json:"status"` // 'active', 'inactive'
	CreatedAt    time.Time `json:"created_at"`
}

// Outlet - A physical store/branch location
type Outlet struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Status   string `gorm:"default:Active" json:"status"` // 'Active', 'Inactive'
}

// Role - A named permission group. Users reference roles by name.
// The "superadmin" role is special-cased: it bypasses all permission
// checks and its row can never be deleted.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50" json:"name"`
}

// RolePermission - One cell of the RBAC allow matrix.
// Unique per (role_id, module, action); a missing row means "denied".
type RolePermission struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	RoleID  uint   `gorm:"uniqueIndex:idx_role_module_action" json:"role_id"`
	Module  string `gorm:"uniqueIndex:idx_role_module_action;size:50" json:"module"`
	Action  string `gorm:"uniqueIndex:idx_role_module_action;size:20" json:"action"` // 'create', 'edit', 'delete', 'show'
	Allowed bool   `json:"allowed"`
}

// Product - The pharmacy inventory
type Product struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `json:"name"`
	Stock        int        `json:"stock"`
	CostPrice    float64    `json:"cost_price"`
	SellingPrice float64    `json:"selling_price"`
	Unit         string     `json:"unit"`
	Category     string     `json:"category"`
	ExpiredDate  *time.Time `json:"expired_date"`
}

// Supplier - Simple reference entity, no stock linkage
type Supplier struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// Transaction - The Sale Header
type Transaction struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	OutletID        *uint             `json:"outlet_id"` // nulled out if the outlet is deleted
	TotalAmount     float64           `json:"total_amount"`
	TransactionDate time.Time         `json:"transaction_date"`
	Items           []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
}

// TransactionItem - One line of a sale's cart.
// Price is a snapshot taken at sale time, not a live reference,
// so historical reports stay accurate after price changes.
type TransactionItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID uint    `gorm:"index" json:"transaction_id"`
	ProductID     uint    `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
}

// Inventory history types. Every stock mutation records which flow caused it.
const (
	HistorySale       = "sale"
	HistoryRestock    = "restock"
	HistoryOpname     = "opname"
	HistoryAdjustment = "adjustment"
)

// InventoryHistory - Append-only audit ledger of stock changes.
// Rows are never updated or deleted. For every row:
// new_stock = previous_stock + quantity_change.
type InventoryHistory struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      uint      `gorm:"index" json:"product_id"`
	Type           string    `gorm:"size:20" json:"type"`
	QuantityChange int       `json:"quantity_change"` // signed: + stock in, - stock out
	PreviousStock  int       `json:"previous_stock"`
	NewStock       int       `json:"new_stock"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// Setting - Singleton row holding transaction settings
type Setting struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	PPNRate      float64 `json:"ppn_rate"`
	DiscountRate float64 `json:"discount_rate"`
}
