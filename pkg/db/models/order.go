package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

// Order is the persisted result of a checkout. Monetary columns are in
// paise; the pricing layer only rounds when the order is written.
type Order struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   int64                `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName  string               `gorm:"column:customer_name;not null"`
	CustomerPhone string               `gorm:"column:customer_phone;not null;index"`
	CustomerEmail *string              `gorm:"column:customer_email"`
	DeliveryAddr  string               `gorm:"column:delivery_addr;not null"`
	Status        enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	Gateway       enums.PaymentGateway `gorm:"column:gateway;type:text;not null"`
	CouponCode    *string              `gorm:"column:coupon_code"`
	SubtotalPaise int64                `gorm:"column:subtotal_paise;not null"`
	DiscountPaise int64                `gorm:"column:discount_paise;not null;default:0"`
	TotalPaise    int64                `gorm:"column:total_paise;not null"`
	Items         []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Attempt       *PaymentAttempt      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt        *time.Time           `gorm:"column:paid_at"`
	ExpiredAt     *time.Time           `gorm:"column:expired_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
