package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
	pkgerrors "github.com/rahulvermadev/tiffinbox-backend/pkg/errors"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_email TEXT,
  delivery_addr TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  gateway TEXT NOT NULL,
  coupon_code TEXT,
  subtotal_paise INTEGER NOT NULL,
  discount_paise INTEGER NOT NULL DEFAULT 0,
  total_paise INTEGER NOT NULL,
  paid_at DATETIME,
  expired_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  plan_id TEXT,
  plan_days INTEGER NOT NULL DEFAULT 1,
  qty INTEGER NOT NULL,
  unit_price_paise INTEGER NOT NULL,
  line_total_paise INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	attempts := `
CREATE TABLE IF NOT EXISTS payment_attempts (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  gateway TEXT NOT NULL,
  merchant_txn_id TEXT NOT NULL UNIQUE,
  gateway_order_id TEXT,
  gateway_payment_id TEXT,
  status TEXT NOT NULL DEFAULT 'created',
  amount_paise INTEGER NOT NULL,
  last_payment_state TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{orders, lineItems, attempts} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	for _, table := range []string{"orders", "order_line_items", "payment_attempts"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

func newTestOrdersService(t *testing.T, db *gorm.DB) (Service, Repository) {
	t.Helper()

	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:     gormTxRunner{db: db},
		Repo:   repo,
	})
	require.NoError(t, err)
	return svc, repo
}

func seedOrderWithAttempt(t *testing.T, db *gorm.DB, orderNumber int64, status enums.OrderStatus) (models.Order, models.PaymentAttempt) {
	t.Helper()

	order := models.Order{
		ID:            uuid.New(),
		OrderNumber:   orderNumber,
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		DeliveryAddr:  "12 MG Road, Pune",
		Status:        status,
		Gateway:       enums.PaymentGatewayPhonePe,
		SubtotalPaise: 126000,
		DiscountPaise: 5000,
		TotalPaise:    121000,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&order).Error)

	attempt := models.PaymentAttempt{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Gateway:       enums.PaymentGatewayPhonePe,
		MerchantTxnID: uuid.NewString(),
		Status:        enums.PaymentAttemptStatusCreated,
		AmountPaise:   121000,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&attempt).Error)
	return order, attempt
}

func TestApplyPaymentResultCompleted(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	order, attempt := seedOrderWithAttempt(t, db, 1001, enums.OrderStatusPending)

	result, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		GatewayTxnID:  "T240301",
		MerchantTxnID: attempt.MerchantTxnID,
		PaymentState:  "COMPLETED",
		AmountPaise:   121000,
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.True(t, result.Updated)
	assert.Equal(t, enums.OrderStatusPaidPending, result.NewStatus)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusPaidPending, stored.Status)
	assert.NotNil(t, stored.PaidAt)

	var storedAttempt models.PaymentAttempt
	require.NoError(t, db.First(&storedAttempt, "id = ?", attempt.ID).Error)
	assert.Equal(t, enums.PaymentAttemptStatusCompleted, storedAttempt.Status)
	require.NotNil(t, storedAttempt.GatewayPaymentID)
	assert.Equal(t, "T240301", *storedAttempt.GatewayPaymentID)
}

func TestApplyPaymentResultFailed(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	order, attempt := seedOrderWithAttempt(t, db, 1002, enums.OrderStatusPending)

	result, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		MerchantTxnID: attempt.MerchantTxnID,
		PaymentState:  "FAILED",
	})
	require.NoError(t, err)
	assert.True(t, result.Updated)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusPaymentFailed, stored.Status)
	assert.Nil(t, stored.PaidAt)
}

func TestApplyPaymentResultUnmatchedIsNoOp(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)

	result, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		GatewayTxnID:  "T-unknown",
		MerchantTxnID: "TBX-unknown",
		PaymentState:  "COMPLETED",
	})
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.False(t, result.Updated)
}

func TestApplyPaymentResultFallsBackToMerchantTxnID(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	_, attempt := seedOrderWithAttempt(t, db, 1003, enums.OrderStatusPending)

	result, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		GatewayTxnID:  "T-not-recorded-yet",
		MerchantTxnID: attempt.MerchantTxnID,
		PaymentState:  "PENDING",
	})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, enums.OrderStatusPaymentPending, result.NewStatus)
}

func TestApplyPaymentResultDuplicateCallbackDoesNotRegress(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	order, attempt := seedOrderWithAttempt(t, db, 1004, enums.OrderStatusPending)

	first, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		MerchantTxnID: attempt.MerchantTxnID,
		PaymentState:  "COMPLETED",
	})
	require.NoError(t, err)
	assert.True(t, first.Updated)

	// A late duplicate reporting FAILED must not overwrite the settled
	// order.
	second, err := svc.ApplyPaymentResult(context.Background(), ApplyPaymentInput{
		Gateway:       enums.PaymentGatewayPhonePe,
		MerchantTxnID: attempt.MerchantTxnID,
		PaymentState:  "FAILED",
	})
	require.NoError(t, err)
	assert.True(t, second.Matched)
	assert.False(t, second.Updated)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusPaidPending, stored.Status)
}

func TestTrack(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	order, _ := seedOrderWithAttempt(t, db, 1005, enums.OrderStatusPaidPending)

	found, err := svc.Track(context.Background(), order.OrderNumber, order.CustomerPhone)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = svc.Track(context.Background(), order.OrderNumber, "0000000000")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSetStatusTransitions(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc, _ := newTestOrdersService(t, db)
	order, _ := seedOrderWithAttempt(t, db, 1006, enums.OrderStatusPaidPending)

	require.NoError(t, svc.SetStatus(context.Background(), order.ID, enums.OrderStatusConfirmed))
	require.NoError(t, svc.SetStatus(context.Background(), order.ID, enums.OrderStatusOutForDelivery))
	require.NoError(t, svc.SetStatus(context.Background(), order.ID, enums.OrderStatusDelivered))

	// Delivered orders cannot be cancelled.
	err := svc.SetStatus(context.Background(), order.ID, enums.OrderStatusCancelled)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// Payment-driven statuses are not settable from the admin surface.
	err = svc.SetStatus(context.Background(), order.ID, enums.OrderStatusPaidPending)
	require.Error(t, err)
}
