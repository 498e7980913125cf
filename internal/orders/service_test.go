package orders

import (
	"context"
	"testing"
	"time"

	"bistro/internal/cart"
	"bistro/internal/database"
	"bistro/internal/menu"
	"bistro/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const address = "123 Main Street, Apt 4B, New York, NY 10001"

func setup(t *testing.T) (*Service, *cart.Service) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := menu.NewStore(db)
	_, err = store.Seed(context.Background(), false)
	require.NoError(t, err)

	carts := cart.NewService(db, store, cart.Pricing{
		TaxRate:     decimal.RequireFromString("0.10"),
		DeliveryFee: decimal.RequireFromString("3.99"),
	})
	return NewService(db, carts), carts
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	svc, carts := setup(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, "u1", "1", 2))
	require.NoError(t, carts.AddLine(ctx, "u1", "10", 1))

	order, err := svc.Checkout(ctx, "u1", "u1", address)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, string(models.OrderStatusReceived), order.Status)
	require.Len(t, order.Items, 2)

	// 2 x 12.99 + 6.99 = 32.97; tax 3.30; fee 3.99
	assert.Equal(t, "32.97", order.Subtotal.StringFixed(2))
	assert.Equal(t, "3.30", order.Tax.StringFixed(2))
	assert.Equal(t, "40.26", order.Total.StringFixed(2))

	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	stored, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "u1", stored.UserID)
}

func TestCheckoutErrors(t *testing.T) {
	svc, carts := setup(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, "u1", "u1", address)
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.NoError(t, carts.AddLine(ctx, "u1", "1", 1))
	_, err = svc.Checkout(ctx, "u1", "u1", " ")
	assert.ErrorIs(t, err, ErrAddressRequired)

	// failed checkout leaves the cart alone
	c, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Lines, 1)
}

func TestListByUserNewestFirst(t *testing.T) {
	svc, carts := setup(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, item := range []string{"1", "2"} {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		require.NoError(t, carts.AddLine(ctx, "u1", item, 1))
		_, err := svc.Checkout(ctx, "u1", "u1", address)
		require.NoError(t, err)
	}
	require.NoError(t, carts.AddLine(ctx, "u2", "3", 1))
	_, err := svc.Checkout(ctx, "u2", "u2", address)
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Pepperoni Pizza", mine[0].Items[0].Name)

	all, err := svc.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListAll(ctx, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus(t *testing.T) {
	svc, carts := setup(t)
	ctx := context.Background()

	require.NoError(t, carts.AddLine(ctx, "u1", "1", 1))
	order, err := svc.Checkout(ctx, "u1", "u1", address)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, "preparing")
	require.NoError(t, err)
	assert.Equal(t, "preparing", updated.Status)
	assert.Nil(t, updated.TimeCompleted)

	updated, err = svc.UpdateStatus(ctx, order.ID, "delivered")
	require.NoError(t, err)
	assert.NotNil(t, updated.TimeCompleted)

	_, err = svc.UpdateStatus(ctx, order.ID, "preparing")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, order.ID, "plating")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 9999, "ready")
	assert.ErrorIs(t, err, ErrNotFound)

	preparing, err := svc.ListAll(ctx, "delivered")
	require.NoError(t, err)
	assert.Len(t, preparing, 1)
}
