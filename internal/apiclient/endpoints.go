package apiclient

import (
	"context"
	"net/http"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the account returned by the auth endpoints.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      enums.Role `json:"role"`
}

// Session is the token pair issued at login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Login authenticates and stores the access token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", body, &out, nil); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// Refresh rotates the refresh token using the current (possibly expired) access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var out Session
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.Do(ctx, http.MethodPost, "/auth/refresh", body, &out, nil); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditMode reads the edit session state of the current browser session.
func (c *Client) EditMode(ctx context.Context) (editsession.State, error) {
	var out editsession.State
	err := c.Do(ctx, http.MethodGet, "/edit-mode", nil, &out, nil)
	return out, err
}

// ToggleEditMode flips edit mode; it is a no-op for ineligible roles.
func (c *Client) ToggleEditMode(ctx context.Context) (editsession.State, error) {
	var out editsession.State
	err := c.Do(ctx, http.MethodPost, "/edit-mode/toggle", nil, &out, nil)
	return out, err
}

// ValidateCoupon checks a code and returns its pricing view.
func (c *Client) ValidateCoupon(ctx context.Context, code string) (*cart.Coupon, error) {
	var out cart.Coupon
	if err := c.Do(ctx, http.MethodPost, "/coupons/validate", map[string]string{"code": code}, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// Reservation is the optional table booking attached to an order.
type Reservation struct {
	Date       string `json:"date"`
	Time       string `json:"time"`
	GuestCount int    `json:"guestCount"`
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	Items          []OrderItem     `json:"items"`
	CustomerName   string          `json:"customerName"`
	CustomerEmail  string          `json:"customerEmail"`
	CustomerPhone  string          `json:"customerPhone"`
	Notes          string          `json:"notes,omitempty"`
	CouponCode     string          `json:"couponCode,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	Reservation    *Reservation    `json:"reservation,omitempty"`
}

// Order is the created order as returned by the API.
type Order struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	Status      enums.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	Items       []OrderItem       `json:"items"`
}

// PlaceOrder submits an order. idempotencyKey makes retries safe.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (*Order, error) {
	var out Order
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := c.Do(ctx, http.MethodPost, "/orders", req, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderRequestFromCart builds the checkout payload from the cart state.
func OrderRequestFromCart(c *cart.Cart) OrderRequest {
	lines := c.Lines()
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{MenuItemID: l.ItemID, Name: l.Name, Price: l.UnitPrice, Quantity: l.Quantity})
	}
	totals := cart.Compute(lines, c.Coupon())
	req := OrderRequest{
		Items:          items,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.Discount,
		Total:          totals.Total,
	}
	if applied := c.Coupon(); applied != nil {
		req.CouponCode = applied.Code
	}
	return req
}
