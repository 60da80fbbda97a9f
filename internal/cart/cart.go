package cart

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is a purchasable menu entry as seen by the cart.
type Item struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Line is one distinct item in the cart.
type Line struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal returns unitPrice × quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// storedLine is the persisted shape; prices are plain JSON numbers.
type storedLine struct {
	ItemID    string      `json:"itemId"`
	Name      string      `json:"name"`
	UnitPrice json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
}

// Cart is a client-owned list of lines with at most one applied coupon.
// Every mutation is written to Storage under StorageKey. The applied coupon
// lives in memory only.
type Cart struct {
	storage Storage
	lines   []Line
	coupon  *Coupon
}

// Load rehydrates the cart from storage. Missing or corrupt data yields an empty cart.
func Load(storage Storage) *Cart {
	c := &Cart{storage: storage}
	if storage == nil {
		return c
	}
	raw, err := storage.Load(StorageKey)
	if err != nil || len(raw) == 0 {
		return c
	}
	c.lines = decodeLines(raw)
	return c
}

func decodeLines(raw []byte) []Line {
	var stored []storedLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil
	}
	lines := make([]Line, 0, len(stored))
	index := map[string]int{}
	for _, s := range stored {
		id := strings.TrimSpace(s.ItemID)
		if id == "" || s.Quantity <= 0 {
			continue
		}
		price, err := decimal.NewFromString(s.UnitPrice.String())
		if err != nil || price.IsNegative() {
			continue
		}
		if i, ok := index[id]; ok {
			lines[i].Quantity += s.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, Line{ItemID: id, Name: s.Name, UnitPrice: price, Quantity: s.Quantity})
	}
	return lines
}

func encodeLines(lines []Line) ([]byte, error) {
	stored := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		stored = append(stored, storedLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: json.Number(l.UnitPrice.String()),
			Quantity:  l.Quantity,
		})
	}
	return json.Marshal(stored)
}

func (c *Cart) persist() error {
	if c.storage == nil {
		return nil
	}
	data, err := encodeLines(c.lines)
	if err != nil {
		return err
	}
	return c.storage.Save(StorageKey, data)
}

func (c *Cart) find(itemID string) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddItem increments an existing line or appends a new one. qty <= 0 leaves the cart unchanged.
func (c *Cart) AddItem(item Item, qty int) error {
	id := strings.TrimSpace(item.ID)
	if qty <= 0 || id == "" || item.Price.IsNegative() {
		return nil
	}
	if i := c.find(id); i >= 0 {
		c.lines[i].Quantity += qty
	} else {
		c.lines = append(c.lines, Line{ItemID: id, Name: item.Name, UnitPrice: item.Price, Quantity: qty})
	}
	return c.persist()
}

// RemoveItem deletes the line for itemID. Absent ids are ignored.
func (c *Cart) RemoveItem(itemID string) error {
	i := c.find(itemID)
	if i < 0 {
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return c.persist()
}

// SetQuantity replaces the quantity of itemID; qty <= 0 removes the line.
func (c *Cart) SetQuantity(itemID string, qty int) error {
	if qty <= 0 {
		return c.RemoveItem(itemID)
	}
	i := c.find(itemID)
	if i < 0 {
		return nil
	}
	c.lines[i].Quantity = qty
	return c.persist()
}

// Clear empties the cart and drops the applied coupon.
func (c *Cart) Clear() error {
	c.lines = nil
	c.coupon = nil
	return c.persist()
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Count returns the total number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.lines)
}

// ApplyCoupon replaces the applied coupon when the current subtotal qualifies.
// On rejection the previously applied coupon is kept and a *RejectedError is returned.
func (c *Cart) ApplyCoupon(coupon Coupon) error {
	if err := CheckMinimum(c.Subtotal(), coupon); err != nil {
		return err
	}
	applied := coupon
	c.coupon = &applied
	return nil
}

func (c *Cart) RemoveCoupon() {
	c.coupon = nil
}

// Coupon returns the applied coupon, or nil.
func (c *Cart) Coupon() *Coupon {
	if c.coupon == nil {
		return nil
	}
	applied := *c.coupon
	return &applied
}

// DiscountAmount is the discount coupon would grant on the current subtotal.
func (c *Cart) DiscountAmount(coupon *Coupon) decimal.Decimal {
	return Discount(c.Subtotal(), coupon)
}

// FinalTotal is max(subtotal - discount of the applied coupon, 0).
func (c *Cart) FinalTotal() decimal.Decimal {
	return Compute(c.lines, c.coupon).Total
}

// Summary is the display view of the cart, rounded to the nearest currency unit.
type Summary struct {
	Lines      []Line `json:"lines"`
	CouponCode string `json:"couponCode,omitempty"`
	Totals
}

func (c *Cart) Summary() Summary {
	s := Summary{
		Lines:  c.Lines(),
		Totals: Compute(c.lines, c.coupon).Rounded(),
	}
	if c.coupon != nil {
		s.CouponCode = c.coupon.Code
	}
	return s
}
