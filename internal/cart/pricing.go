package cart

import (
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Coupon is the pricing view of a discount code. Optional bounds are left invalid when unset.
type Coupon struct {
	Code              string              `json:"code"`
	DiscountType      enums.DiscountType  `json:"discountType"`
	DiscountValue     decimal.Decimal     `json:"discountValue"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
}

// Totals is the exact (unrounded) price breakdown of a set of lines.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the totals rounded to the nearest currency unit for display.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(0),
		Discount: t.Discount.Round(0),
		Total:    t.Total.Round(0),
	}
}

// Subtotal sums unitPrice × quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

// Discount computes the discount c grants on subtotal. A nil coupon grants nothing.
// Percentage discounts are capped by MaxDiscountAmount; fixed discounts are taken verbatim.
func Discount(subtotal decimal.Decimal, c *Coupon) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch c.DiscountType {
	case enums.DiscountTypePercentage:
		amount = subtotal.Mul(c.DiscountValue).Div(hundred)
		if c.MaxDiscountAmount.Valid && amount.GreaterThan(c.MaxDiscountAmount.Decimal) {
			amount = c.MaxDiscountAmount.Decimal
		}
	case enums.DiscountTypeFixed:
		amount = c.DiscountValue
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Compute prices lines with an optional coupon. The total never drops below zero.
func Compute(lines []Line, c *Coupon) Totals {
	subtotal := Subtotal(lines)
	discount := Discount(subtotal, c)
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, Discount: discount, Total: total}
}

// CheckMinimum reports why c cannot be applied to subtotal, or nil when it can.
func CheckMinimum(subtotal decimal.Decimal, c Coupon) error {
	if !c.DiscountType.IsValid() {
		return &RejectedError{Code: c.Code, Reason: "coupon has an unknown discount type"}
	}
	if c.MinOrderAmount.Valid && subtotal.LessThan(c.MinOrderAmount.Decimal) {
		return &RejectedError{
			Code:   c.Code,
			Reason: "minimum order amount is " + c.MinOrderAmount.Decimal.StringFixed(2),
		}
	}
	return nil
}

// RejectedError explains why a coupon was not accepted.
type RejectedError struct {
	Code   string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Code == "" {
		return "coupon rejected: " + e.Reason
	}
	return "coupon " + e.Code + " rejected: " + e.Reason
}
