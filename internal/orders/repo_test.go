package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tbostore/storefront-backend/pkg/db/models"
	"github.com/tbostore/storefront-backend/pkg/enums"
	"github.com/tbostore/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_address TEXT NOT NULL,
  items TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'SAR',
  subtotal_halalas INTEGER NOT NULL,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  total_halalas INTEGER NOT NULL,
  coupon_code TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT,
  stripe_session_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func testOrder(method enums.PaymentMethod) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		CustomerName:    "Test Customer",
		CustomerPhone:   "+966500000000",
		CustomerAddress: "Riyadh",
		Items: types.OrderItems{{
			ProductID:        uuid.NewString(),
			Name:             "oud blend",
			NameAR:           "خلطة عود",
			UnitPriceHalalas: 13000,
			Quantity:         1,
			LineTotalHalalas: 13000,
		}},
		PaymentMethod:   method,
		Currency:        enums.CurrencySAR,
		SubtotalHalalas: 13000,
		TotalHalalas:    13000,
		Status:          enums.OrderStatusPending,
	}
}

func TestCreate_AssignsFallbackOrderNumber(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder(enums.PaymentMethodChatHandoff))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.OrderNumber, "TBO-"),
		"expected fallback prefix, got %s", created.OrderNumber)
}

func TestCreate_KeepsCallerOrderNumber(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	order := testOrder(enums.PaymentMethodDirectTransfer)
	order.OrderNumber = "TBO-000042"
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, "TBO-000042", created.OrderNumber)
}

func TestFindByStripeSessionID(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	sessionID := "cs_test_123"
	order := testOrder(enums.PaymentMethodHostedCheckout)
	order.StripeSessionID = &sessionID
	order.Status = enums.OrderStatusPaid
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	found, err := repo.FindByStripeSessionID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)

	_, err = repo.FindByStripeSessionID(ctx, "cs_test_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateFromSession_DedupesBySession(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	sessionID := "cs_test_replay"
	first := testOrder(enums.PaymentMethodHostedCheckout)
	first.StripeSessionID = &sessionID
	created, existed, err := repo.CreateFromSession(ctx, first)
	require.NoError(t, err)
	assert.False(t, existed)
	assert.NotEmpty(t, created.OrderNumber)

	replay := testOrder(enums.PaymentMethodHostedCheckout)
	replay.StripeSessionID = &sessionID
	again, existed, err := repo.CreateFromSession(ctx, replay)
	require.NoError(t, err)
	assert.True(t, existed, "a replayed session must resolve the recorded order")
	assert.Equal(t, created.ID, again.ID)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = repo.CreateFromSession(ctx, testOrder(enums.PaymentMethodHostedCheckout))
	assert.Error(t, err, "an order without a session id cannot be deduped")
}

func TestList_FiltersByStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	pending := testOrder(enums.PaymentMethodChatHandoff)
	_, err := repo.Create(ctx, pending)
	require.NoError(t, err)

	paid := testOrder(enums.PaymentMethodHostedCheckout)
	paid.Status = enums.OrderStatusPaid
	_, err = repo.Create(ctx, paid)
	require.NoError(t, err)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := enums.OrderStatusPaid
	onlyPaid, err := repo.List(ctx, &status)
	require.NoError(t, err)
	require.Len(t, onlyPaid, 1)
	assert.Equal(t, paid.ID, onlyPaid[0].ID)
}

func TestUpdateStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testOrder(enums.PaymentMethodDirectTransfer))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, enums.OrderStatusShipped))
	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, reloaded.Status)

	err = repo.UpdateStatus(ctx, uuid.New(), enums.OrderStatusShipped)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderItems_RoundTripThroughJSONColumn(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	order := testOrder(enums.PaymentMethodChatHandoff)
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, "oud blend", reloaded.Items[0].Name)
	assert.Equal(t, int64(13000), reloaded.Items[0].LineTotalHalalas)
}
