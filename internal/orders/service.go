package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/coupons"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponValidator interface {
	Validate(ctx context.Context, req coupons.ValidateRequest) (*cart.Coupon, error)
}

type couponRedeemer interface {
	RedeemWithTx(tx *gorm.DB, code string) error
}

type menuLookup interface {
	GetItem(ctx context.Context, resource, id string) (content.Record, error)
}

type orderRecorder interface {
	IncOrderPlaced(withCoupon bool)
}

// Viewer is the caller reading orders.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.Role
}

// ListParams pages through orders.
type ListParams struct {
	pagination.Params
	Status enums.OrderStatus
}

// Service exposes order placement and management.
type Service interface {
	Create(ctx context.Context, userID *uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	List(ctx context.Context, params ListParams) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

// ServiceParams bundles the order service dependencies. Menu and Metrics are optional.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Coupons  couponValidator
	Redeemer couponRedeemer
	Menu     menuLookup
	Metrics  orderRecorder
}

type service struct {
	repo     Repository
	tx       txRunner
	coupons  couponValidator
	redeemer couponRedeemer
	menu     menuLookup
	metrics  orderRecorder
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if params.Redeemer == nil {
		return nil, fmt.Errorf("coupon redeemer required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		coupons:  params.Coupons,
		redeemer: params.Redeemer,
		menu:     params.Menu,
		metrics:  params.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, userID *uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	if err := s.checkMenu(ctx, req.Items); err != nil {
		return nil, err
	}

	lines := req.lines()
	var coupon *cart.Coupon
	code := coupons.NormalizeCode(req.CouponCode)
	if code != "" {
		validated, err := s.coupons.Validate(ctx, coupons.ValidateRequest{
			Code:        code,
			OrderAmount: decimal.NewNullDecimal(cart.Subtotal(lines)),
		})
		if err != nil {
			return nil, err
		}
		coupon = validated
	}

	totals := cart.Compute(lines, coupon)
	if !sameAmount(totals.Subtotal, req.Subtotal) || !sameAmount(totals.Discount, req.DiscountAmount) || !sameAmount(totals.Total, req.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order totals do not match the current prices").
			WithDetails(map[string]any{
				"subtotal":       totals.Subtotal.StringFixed(2),
				"discountAmount": totals.Discount.StringFixed(2),
				"total":          totals.Total.StringFixed(2),
			})
	}

	order := s.buildOrder(userID, req, lines, totals, code)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if code == "" {
			return nil
		}
		if err := s.redeemer.RedeemWithTx(tx.WithContext(ctx), code); err != nil {
			if errors.Is(err, coupons.ErrUsageExhausted) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Coupon usage limit reached")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderPlaced(code != "")
	}
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !viewer.Role.CanEditContent() && (order.UserID == nil || *order.UserID != viewer.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, ListFilter{UserID: &userID, Limit: params.Limit}, params.Cursor)
}

func (s *service) List(ctx context.Context, params ListParams) (*OrderList, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", params.Status)
	}
	return s.list(ctx, ListFilter{Status: params.Status, Limit: params.Limit}, params.Cursor)
}

func (s *service) list(ctx context.Context, filter ListFilter, rawCursor string) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor
	rows, next, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := &OrderList{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		out.Orders = append(out.Orders, *FromModel(&rows[i]))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", status)
	}
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == status {
			updated = order
			return nil
		}
		if !order.Status.CanTransitionTo(status) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", order.Status, status)
		}
		ok, err := repo.UpdateStatus(ctx, id, order.Status, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) buildOrder(userID *uuid.UUID, req CreateOrderRequest, lines []cart.Line, totals cart.Totals, code string) *models.Order {
	order := &models.Order{
		ID:             uuid.New(),
		OrderNumber:    newOrderNumber(s.now()),
		UserID:         userID,
		Status:         enums.OrderStatusPending,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone:  strings.TrimSpace(req.CustomerPhone),
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		Total:          totals.Total,
		Items:          make([]models.OrderItem, 0, len(lines)),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		order.Notes = &notes
	}
	if code != "" {
		order.CouponCode = &code
	}
	if r := req.Reservation; r != nil {
		date, at, guests := r.Date, r.Time, r.GuestCount
		order.ReservationDate = &date
		order.ReservationTime = &at
		order.GuestCount = &guests
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: line.ItemID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal(),
		})
	}
	return order
}

// checkMenu confirms each item is on the menu, available, and priced as listed.
func (s *service) checkMenu(ctx context.Context, items []ItemInput) error {
	if s.menu == nil {
		return nil
	}
	for _, item := range items {
		rec, err := s.menu.GetItem(ctx, content.ResourceMenu, item.MenuItemID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "%s is no longer on the menu", item.Name)
			}
			return err
		}
		if available, ok := rec["isAvailable"].(bool); ok && !available {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s is currently unavailable", item.Name)
		}
		if price, ok := menuPrice(rec["price"]); ok && !price.Equal(item.Price) {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "the price of %s has changed", item.Name)
		}
	}
	return nil
}

func menuPrice(v any) (decimal.Decimal, bool) {
	switch p := v.(type) {
	case float64:
		return decimal.NewFromFloat(p), true
	case string:
		d, err := decimal.NewFromString(p)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.MenuItemID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "menuItemId is required")
		}
		if _, dup := seen[item.MenuItemID]; dup {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "item %s appears more than once", item.MenuItemID)
		}
		seen[item.MenuItemID] = struct{}{}
		if item.Quantity < 1 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "quantity for %s must be at least 1", item.MenuItemID)
		}
		if item.Price.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "price for %s cannot be negative", item.MenuItemID)
		}
	}
	return nil
}

// sameAmount compares at cent precision.
func sameAmount(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
