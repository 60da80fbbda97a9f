package models

import (
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a placed café order with an optional table reservation.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	UserID          *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerEmail   string            `gorm:"column:customer_email;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null"`
	Notes           *string           `gorm:"column:notes"`
	CouponCode      *string           `gorm:"column:coupon_code"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	ReservationDate *string           `gorm:"column:reservation_date"`
	ReservationTime *string           `gorm:"column:reservation_time"`
	GuestCount      *int              `gorm:"column:guest_count"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots a menu item at the moment the order was placed.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MenuItemID string          `gorm:"column:menu_item_id;type:text;not null"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
