package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/essenzakw/essenza-backend/pkg/types"
)

// ErrUnavailable signals an add attempt for an out-of-stock product. The cart
// is left untouched.
var ErrUnavailable = errors.New("product is not available")

// debugChecks compares incremental totals against a full recompute after every
// mutation. Enabled in tests only.
var debugChecks = false

// Line is one product's presence in the cart. Title, prices, and image are
// captured at add-time and not re-synced with catalog changes.
type Line struct {
	ProductID      uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	ListPrice      types.Money `json:"price"`
	EffectivePrice types.Money `json:"salePrice"`
	ImageURL       string      `json:"image_url"`
	Quantity       int         `json:"quantity"`
	Available      bool        `json:"in_stock"`
}

// Total returns quantity times the captured effective price.
func (l Line) Total() types.Money {
	return l.EffectivePrice.MulInt(int64(l.Quantity))
}

// ProductSnapshot is the catalog view of a product at the moment it is added.
type ProductSnapshot struct {
	ID        uuid.UUID
	Title     string
	Price     types.Money
	SalePrice *types.Money
	ImageURL  string
	InStock   bool
}

// effectivePrice is the sale price when present and lower, the list price otherwise.
func (p ProductSnapshot) effectivePrice() types.Money {
	if p.SalePrice != nil && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// Cart holds a shopper's line items plus denormalized totals. Totals are
// adjusted incrementally on the hot path and recomputed in full only at the
// checkout trust boundary (Reconcile).
type Cart struct {
	Items      []Line      `json:"items"`
	TotalItems int         `json:"totalItems"`
	TotalPrice types.Money `json:"totalPrice"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		Items:      []Line{},
		TotalPrice: types.MoneyZero(),
	}
}

func (c *Cart) findLine(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges the product into the cart. Adding a product already in the cart
// increases its quantity at the line's captured price. Returns ErrUnavailable
// without mutating state when the product is out of stock.
func (c *Cart) Add(p ProductSnapshot, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if !p.InStock {
		return ErrUnavailable
	}

	if i := c.findLine(p.ID); i >= 0 {
		line := &c.Items[i]
		line.Quantity += quantity
		c.TotalItems += quantity
		c.TotalPrice = c.TotalPrice.Add(line.EffectivePrice.MulInt(int64(quantity)))
		c.check()
		return nil
	}

	line := Line{
		ProductID:      p.ID,
		Title:          p.Title,
		ListPrice:      p.Price,
		EffectivePrice: p.effectivePrice(),
		ImageURL:       p.ImageURL,
		Quantity:       quantity,
		Available:      true,
	}
	c.Items = append(c.Items, line)
	c.TotalItems += quantity
	c.TotalPrice = c.TotalPrice.Add(line.EffectivePrice.MulInt(int64(quantity)))
	c.check()
	return nil
}

// Remove deletes the line with the given id. No-op when the id is absent.
func (c *Cart) Remove(productID uuid.UUID) {
	i := c.findLine(productID)
	if i < 0 {
		return
	}
	line := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.TotalItems -= line.Quantity
	c.TotalPrice = c.TotalPrice.Sub(line.Total())
	c.check()
}

// UpdateQuantity sets a line's quantity, adjusting totals by the delta.
// Quantities below 1 are rejected as a silent no-op; callers remove lines
// explicitly. No-op when the id is absent.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		return
	}
	i := c.findLine(productID)
	if i < 0 {
		return
	}
	line := &c.Items[i]
	delta := quantity - line.Quantity
	line.Quantity = quantity
	c.TotalItems += delta
	c.TotalPrice = c.TotalPrice.Add(line.EffectivePrice.MulInt(int64(delta)))
	c.check()
}

// Clear empties all lines and zeroes both totals.
func (c *Cart) Clear() {
	c.Items = []Line{}
	c.TotalItems = 0
	c.TotalPrice = types.MoneyZero()
}

// SetStock updates a line's availability flag. A line marked out of stock is
// removed immediately: unavailable items cannot remain purchasable.
func (c *Cart) SetStock(productID uuid.UUID, inStock bool) {
	i := c.findLine(productID)
	if i < 0 {
		return
	}
	if inStock {
		c.Items[i].Available = true
		return
	}
	c.Remove(productID)
}

// Reconcile drops every line whose product is missing from the snapshot or no
// longer in stock, recomputes totals from the surviving lines by full
// summation, and returns the removed lines so callers can notify the shopper.
func (c *Cart) Reconcile(inStock map[uuid.UUID]bool) []Line {
	removed := []Line{}
	kept := c.Items[:0]
	for _, line := range c.Items {
		if available, ok := inStock[line.ProductID]; ok && available {
			kept = append(kept, line)
			continue
		}
		removed = append(removed, line)
	}
	c.Items = kept
	c.recompute()
	return removed
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) recompute() {
	items := 0
	total := types.MoneyZero()
	for _, line := range c.Items {
		items += line.Quantity
		total = total.Add(line.Total())
	}
	c.TotalItems = items
	c.TotalPrice = total
}

func (c *Cart) check() {
	if !debugChecks {
		return
	}
	items := 0
	total := types.MoneyZero()
	for _, line := range c.Items {
		items += line.Quantity
		total = total.Add(line.Total())
	}
	if items != c.TotalItems || !total.Equal(c.TotalPrice) {
		panic(fmt.Sprintf("cart totals drifted: have items=%d price=%s, want items=%d price=%s",
			c.TotalItems, c.TotalPrice, items, total))
	}
}
