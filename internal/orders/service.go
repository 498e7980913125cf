package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/cart"
	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

var (
	// ErrNotFound is returned when an order does not exist
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when checking out a cart with no lines
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus is returned for unknown or disallowed status changes
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrAddressRequired is returned when checkout has no delivery address
	ErrAddressRequired = errors.New("delivery address is required")
)

// Service places and tracks orders
type Service struct {
	db    *gorm.DB
	carts *cart.Service
	now   func() time.Time
}

// NewService creates an order service that checks out from carts
func NewService(db *gorm.DB, carts *cart.Service) *Service {
	return &Service{db: db, carts: carts, now: time.Now}
}

// Checkout turns the cart at cartKey into an order for userID. The cart
// lines and totals are copied at their current prices and the cart is
// cleared in the same transaction.
func (s *Service) Checkout(ctx context.Context, userID, cartKey, address string) (*models.Order, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressRequired
	}

	var order models.Order
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		lines, err := s.carts.LinesTx(tx, cartKey)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		totals := s.carts.Compute(lines)
		order = models.Order{
			UserID:       userID,
			Subtotal:     totals.Subtotal,
			Tax:          totals.Tax,
			DeliveryFee:  totals.DeliveryFee,
			Total:        totals.Total,
			Status:       string(models.OrderStatusReceived),
			Address:      address,
			TimeReceived: s.now(),
		}
		for _, l := range lines {
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: l.MenuItemID,
				Name:       l.Name,
				Price:      l.Price,
				Quantity:   l.Quantity,
				Image:      l.Image,
			})
		}

		// gorm saves the Items association along with the order
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return s.carts.ClearTx(tx, cartKey)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Get retrieves an order with its items
func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order, newest first, optionally restricted to a status
func (s *Service) ListAll(ctx context.Context, status string) ([]models.Order, error) {
	q := s.db.Preload("Items")
	if status != "" {
		if _, ok := models.ParseOrderStatus(status); !ok {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders
// are final.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current := models.OrderStatus(order.Status)
	if current == next {
		return order, nil
	}
	if current.IsFinal() {
		return nil, fmt.Errorf("%w: order is already %s", ErrInvalidStatus, current)
	}

	order.Status = string(next)
	if next.IsFinal() {
		now := s.now()
		order.TimeCompleted = &now
	}
	err = s.db.Model(order).Updates(map[string]interface{}{
		"status":         order.Status,
		"time_completed": order.TimeCompleted,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	return order, nil
}
