package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry the storefront can sell.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex"`
	Description string          `gorm:"column:description"`
	Category    string          `gorm:"column:category;not null;index"`
	PriceAmount decimal.Decimal `gorm:"column:price_amount;type:numeric(12,2);not null"`
	Veg         bool            `gorm:"column:veg;not null;default:true"`
	ImageURL    *string         `gorm:"column:image_url"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	Available   bool            `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
