package coupons

import (
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponDTO is the admin view of a coupon.
type CouponDTO struct {
	ID                uuid.UUID           `json:"id"`
	Code              string              `json:"code"`
	Description       *string             `json:"description,omitempty"`
	DiscountType      enums.DiscountType  `json:"discountType"`
	DiscountValue     decimal.Decimal     `json:"discountValue"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
	ValidFrom         *time.Time          `json:"validFrom,omitempty"`
	ValidUntil        *time.Time          `json:"validUntil,omitempty"`
	UsageLimit        *int                `json:"usageLimit,omitempty"`
	UsedCount         int                 `json:"usedCount"`
	IsActive          bool                `json:"isActive"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// CreateCouponRequest is the admin payload for a new coupon.
type CreateCouponRequest struct {
	Code              string              `json:"code" validate:"required,min=3,max=32"`
	Description       *string             `json:"description"`
	DiscountType      enums.DiscountType  `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal     `json:"discountValue"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
	ValidFrom         *time.Time          `json:"validFrom"`
	ValidUntil        *time.Time          `json:"validUntil"`
	UsageLimit        *int                `json:"usageLimit" validate:"omitempty,min=1"`
	IsActive          *bool               `json:"isActive"`
}

// ValidateRequest asks whether a code can be applied. OrderAmount is optional.
type ValidateRequest struct {
	Code        string              `json:"code" validate:"required"`
	OrderAmount decimal.NullDecimal `json:"orderAmount"`
}

// NormalizeCode canonicalizes a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FromModel maps a stored coupon to its admin view.
func FromModel(c *models.Coupon) *CouponDTO {
	if c == nil {
		return nil
	}
	return &CouponDTO{
		ID:                c.ID,
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
		ValidFrom:         c.ValidFrom,
		ValidUntil:        c.ValidUntil,
		UsageLimit:        c.UsageLimit,
		UsedCount:         c.UsedCount,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
	}
}

// PricingView returns the subset of c the cart engine prices with.
func PricingView(c *models.Coupon) *cart.Coupon {
	if c == nil {
		return nil
	}
	return &cart.Coupon{
		Code:              c.Code,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
	}
}

func (r CreateCouponRequest) toModel() *models.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.Coupon{
		Code:              NormalizeCode(r.Code),
		Description:       r.Description,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MinOrderAmount:    r.MinOrderAmount,
		MaxDiscountAmount: r.MaxDiscountAmount,
		ValidFrom:         r.ValidFrom,
		ValidUntil:        r.ValidUntil,
		UsageLimit:        r.UsageLimit,
		IsActive:          active,
	}
}
