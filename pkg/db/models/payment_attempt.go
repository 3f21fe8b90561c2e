package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

// PaymentAttempt records the gateway-side identifiers for an order. The
// merchant transaction ID is minted by us at checkout and is the
// correlation key the gateways echo back in callbacks.
type PaymentAttempt struct {
	ID               uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index"`
	Gateway          enums.PaymentGateway       `gorm:"column:gateway;type:text;not null"`
	MerchantTxnID    string                     `gorm:"column:merchant_txn_id;not null;uniqueIndex"`
	GatewayOrderID   *string                    `gorm:"column:gateway_order_id;index"`
	GatewayPaymentID *string                    `gorm:"column:gateway_payment_id;index"`
	Status           enums.PaymentAttemptStatus `gorm:"column:status;type:text;not null;default:'created'"`
	AmountPaise      int64                      `gorm:"column:amount_paise;not null"`
	LastPaymentState *string                    `gorm:"column:last_payment_state"`
	CreatedAt        time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
