package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan is reference data describing a recurring tiffin tier.
// The ID doubles as the public plan code ("daily", "weekly", "monthly").
type SubscriptionPlan struct {
	ID              string          `gorm:"column:id;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	DurationDays    int             `gorm:"column:duration_days;not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	Active          bool            `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
