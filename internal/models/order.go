package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Order represents a placed customer order
type Order struct {
	gorm.Model
	UserID        string          `gorm:"index"`
	Items         []OrderItem     `gorm:"foreignkey:OrderID"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2)"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2)"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(10,2)"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2)"`
	Status        string
	Address       string
	TimeReceived  time.Time
	TimeCompleted *time.Time
}

// OrderItem represents an item in an order, priced at checkout time
type OrderItem struct {
	gorm.Model
	OrderID    uint
	MenuItemID string
	Name       string
	Price      decimal.Decimal `gorm:"type:decimal(10,2)"`
	Quantity   int
	Image      string
}

// OrderStatus represents the possible states of an order
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus returns the status named by s
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusReceived, OrderStatusPreparing, OrderStatusReady,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsFinal reports whether no further status change is expected
func (s OrderStatus) IsFinal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}
