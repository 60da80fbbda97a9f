package models

import (
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a redeemable discount code.
type Coupon struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Code              string              `gorm:"column:code;type:text;not null;uniqueIndex"`
	Description       *string             `gorm:"column:description"`
	DiscountType      enums.DiscountType  `gorm:"column:discount_type;type:text;not null"`
	DiscountValue     decimal.Decimal     `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinOrderAmount    decimal.NullDecimal `gorm:"column:min_order_amount;type:numeric(12,2)"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"column:max_discount_amount;type:numeric(12,2)"`
	ValidFrom         *time.Time          `gorm:"column:valid_from"`
	ValidUntil        *time.Time          `gorm:"column:valid_until"`
	UsageLimit        *int                `gorm:"column:usage_limit"`
	UsedCount         int                 `gorm:"column:used_count;not null;default:0"`
	IsActive          bool                `gorm:"column:is_active;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
