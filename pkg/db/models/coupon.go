package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/enums"
)

// Coupon is a discount code managed from the admin surface. Codes are
// matched case-sensitively.
type Coupon struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string           `gorm:"column:code;not null;uniqueIndex"`
	Type      enums.CouponType `gorm:"column:type;type:text;not null"`
	Value     decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	ExpiresAt *time.Time       `gorm:"column:expires_at"`
	Active    bool             `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsValid reports whether the coupon is active and not expired at now.
func (c Coupon) IsValid(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}
