package models

import (
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// CartLine is one item in a cart. A cart is identified by its key: the
// signed-in user's ID or an anonymous browser cart ID.
type CartLine struct {
	gorm.Model
	CartKey     string `gorm:"index"`
	MenuItemID  string
	Name        string
	Description string `gorm:"type:text"`
	Image       string
	Price       decimal.Decimal `gorm:"type:decimal(10,2)"`
	Quantity    int
}

// LineTotal returns price times quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
