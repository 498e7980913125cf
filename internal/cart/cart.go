package cart

import (
	"context"
	"errors"
	"fmt"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned for quantities below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrLineNotFound is returned when the cart has no line for an item
	ErrLineNotFound = errors.New("item is not in the cart")
)

// ItemLookup resolves menu items so the cart can price lines
type ItemLookup interface {
	Get(ctx context.Context, id string) (*models.MenuItem, error)
}

// Pricing holds the checkout surcharges
type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// Totals summarises a cart for display and checkout
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// Cart is the current content of one cart key
type Cart struct {
	Key    string            `json:"key"`
	Lines  []models.CartLine `json:"lines"`
	Totals Totals            `json:"totals"`
}

// Service manages carts in the database
type Service struct {
	db      *gorm.DB
	items   ItemLookup
	pricing Pricing
}

// NewService creates a cart service
func NewService(db *gorm.DB, items ItemLookup, pricing Pricing) *Service {
	return &Service{db: db, items: items, pricing: pricing}
}

// Get returns the cart for key. A key with no lines yields an empty cart.
func (s *Service) Get(ctx context.Context, key string) (*Cart, error) {
	lines, err := s.lines(s.db, key)
	if err != nil {
		return nil, err
	}
	return &Cart{Key: key, Lines: lines, Totals: s.Compute(lines)}, nil
}

// AddLine adds quantity of a menu item, merging with an existing line
func (s *Service) AddLine(ctx context.Context, key, itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", itemID, err)
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var line models.CartLine
		err := tx.Where("cart_key = ? AND menu_item_id = ?", key, itemID).First(&line).Error
		switch {
		case err == nil:
			line.Quantity += quantity
			return tx.Save(&line).Error
		case gorm.IsRecordNotFoundError(err):
			line = models.CartLine{
				CartKey:     key,
				MenuItemID:  item.ID,
				Name:        item.Name,
				Description: item.Description,
				Image:       item.Image,
				Price:       item.Price,
				Quantity:    quantity,
			}
			return tx.Create(&line).Error
		default:
			return err
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add %s to cart: %w", itemID, err)
	}
	return nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it
func (s *Service) UpdateQuantity(ctx context.Context, key, itemID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveLine(ctx, key, itemID)
	}
	res := s.db.Model(&models.CartLine{}).
		Where("cart_key = ? AND menu_item_id = ?", key, itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

// RemoveLine drops an item from the cart
func (s *Service) RemoveLine(ctx context.Context, key, itemID string) error {
	res := s.db.Unscoped().Where("cart_key = ? AND menu_item_id = ?", key, itemID).Delete(&models.CartLine{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

// Clear empties the cart
func (s *Service) Clear(ctx context.Context, key string) error {
	return s.ClearTx(s.db, key)
}

// ClearTx empties the cart inside the caller's transaction
func (s *Service) ClearTx(tx *gorm.DB, key string) error {
	if err := tx.Unscoped().Where("cart_key = ?", key).Delete(&models.CartLine{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// LinesTx reads the cart inside the caller's transaction
func (s *Service) LinesTx(tx *gorm.DB, key string) ([]models.CartLine, error) {
	return s.lines(tx, key)
}

// Merge moves every line of the cart at from into the cart at to, used
// when an anonymous shopper signs in.
func (s *Service) Merge(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	lines, err := s.lines(s.db, from)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := s.AddLine(ctx, to, l.MenuItemID, l.Quantity); err != nil {
			return err
		}
	}
	return s.Clear(ctx, from)
}

// Compute derives the totals of lines. Amounts are rounded to cents.
func (s *Service) Compute(lines []models.CartLine) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
		count += l.Quantity
	}

	t := Totals{
		Subtotal:    subtotal.Round(2),
		Tax:         subtotal.Mul(s.pricing.TaxRate).Round(2),
		DeliveryFee: decimal.Zero,
		ItemCount:   count,
	}
	if subtotal.IsPositive() {
		t.DeliveryFee = s.pricing.DeliveryFee.Round(2)
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.DeliveryFee)
	return t
}

// SinkFor binds the service to one cart key for the ordering assistant
func (s *Service) SinkFor(key string) *Sink {
	return &Sink{service: s, key: key}
}

// Sink adds confirmed assistant lines to a fixed cart
type Sink struct {
	service *Service
	key     string
}

// AddLine implements the assistant's cart sink
func (k *Sink) AddLine(ctx context.Context, itemID string, quantity int) error {
	return k.service.AddLine(ctx, k.key, itemID, quantity)
}

func (s *Service) lines(db *gorm.DB, key string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := db.Where("cart_key = ?", key).Order("id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return lines, nil
}
