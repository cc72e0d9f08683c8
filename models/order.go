package models

import (
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the four known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusCreated, OrderStatusPreparing, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// Open reports whether the status still blocks its table. A table with an
// open order cannot receive a second one; new cart items are merged into
// the open order instead.
func (s OrderStatus) Open() bool {
	return s == OrderStatusCreated || s == OrderStatusPreparing
}

// Closed orders are immutable: no item merges, no further transitions.
func (s OrderStatus) Closed() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

type Order struct {
	gorm.Model
	TableNumber        int         `json:"table_number" gorm:"not null;index"`
	UserID             uint        `json:"user_id" gorm:"not null;index"`
	User               User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	OrderItems         []OrderItem `json:"order_items" gorm:"foreignKey:OrderID"`
	TotalAmountInCents int64       `json:"total_amount_in_cents" gorm:"not null"`
	Status             OrderStatus `json:"status" gorm:"not null;index"`
}

type OrderItem struct {
	gorm.Model
	OrderID uint `json:"order_id" gorm:"not null;index"`
	// Name and price are copied from the menu row at placement time; menu
	// edits after that do not rewrite history.
	MenuItemID          uint   `json:"menu_item_id" gorm:"not null"`
	MenuItemName        string `json:"menu_item_name" gorm:"not null"`
	PriceInCentsAtOrder int64  `json:"price_in_cents_at_order" gorm:"not null"`
	Quantity            int64  `json:"quantity" gorm:"not null"`
}

// SubtotalInCents is unit price times quantity. Computed, never stored.
func (i OrderItem) SubtotalInCents() int64 {
	return i.PriceInCentsAtOrder * i.Quantity
}
