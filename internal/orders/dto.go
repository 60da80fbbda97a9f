package orders

import (
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one cart line submitted at checkout.
type ItemInput struct {
	MenuItemID string          `json:"menuItemId" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"min=1,max=99"`
}

// ReservationInput books a table alongside the order.
type ReservationInput struct {
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
	GuestCount int    `json:"guestCount" validate:"min=1,max=20"`
}

// CreateOrderRequest is the checkout payload. Totals are the client's view and are re-checked.
type CreateOrderRequest struct {
	Items          []ItemInput       `json:"items" validate:"required,min=1,dive"`
	CustomerName   string            `json:"customerName" validate:"required,max=120"`
	CustomerEmail  string            `json:"customerEmail" validate:"required,email"`
	CustomerPhone  string            `json:"customerPhone" validate:"required,max=32"`
	Notes          string            `json:"notes" validate:"max=500"`
	CouponCode     string            `json:"couponCode"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discountAmount"`
	Total          decimal.Decimal   `json:"total"`
	Reservation    *ReservationInput `json:"reservation" validate:"omitempty"`
}

// UpdateStatusRequest moves an order to a new status.
type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// OrderItemDTO is a placed line.
type OrderItemDTO struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

// ReservationDTO is the reservation attached to an order.
type ReservationDTO struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	GuestCount int    `json:"guestCount"`
}

// OrderDTO is the API view of an order.
type OrderDTO struct {
	ID             uuid.UUID         `json:"id"`
	OrderNumber    string            `json:"orderNumber"`
	UserID         *uuid.UUID        `json:"userId,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	CustomerName   string            `json:"customerName"`
	CustomerEmail  string            `json:"customerEmail"`
	CustomerPhone  string            `json:"customerPhone"`
	Notes          *string           `json:"notes,omitempty"`
	CouponCode     *string           `json:"couponCode,omitempty"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	DiscountAmount decimal.Decimal   `json:"discountAmount"`
	Total          decimal.Decimal   `json:"total"`
	Reservation    *ReservationDTO   `json:"reservation,omitempty"`
	Items          []OrderItemDTO    `json:"items"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// FromModel maps a stored order to its API view.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		CustomerName:   o.CustomerName,
		CustomerEmail:  o.CustomerEmail,
		CustomerPhone:  o.CustomerPhone,
		Notes:          o.Notes,
		CouponCode:     o.CouponCode,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		Total:          o.Total,
		Items:          make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.ReservationDate != nil && o.ReservationTime != nil {
		res := &ReservationDTO{Date: *o.ReservationDate, Time: *o.ReservationTime}
		if o.GuestCount != nil {
			res.GuestCount = *o.GuestCount
		}
		dto.Reservation = res
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.UnitPrice,
			Quantity:   item.Quantity,
			LineTotal:  item.LineTotal,
		})
	}
	return dto
}

func (r CreateOrderRequest) lines() []cart.Line {
	lines := make([]cart.Line, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, cart.Line{
			ItemID:    item.MenuItemID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
