package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem snapshots a cart line at checkout time. PlanDays is the
// resolved plan duration so the order stays priceable even if the plan
// table changes later.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	PlanID         *string   `gorm:"column:plan_id"`
	PlanDays       int       `gorm:"column:plan_days;not null;default:1"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPricePaise int64     `gorm:"column:unit_price_paise;not null"`
	LineTotalPaise int64     `gorm:"column:line_total_paise;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
