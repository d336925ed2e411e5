package cart

import (
	"fmt"

	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
)

// Line is one cart entry: a menu item snapshot plus a quantity. The cart
// holds at most one line per menu item id.
type Line struct {
	Item     models.MenuItem
	Quantity int
}

func (l Line) Subtotal() float64 {
	return l.Item.Price * float64(l.Quantity)
}

// Cart is the in-memory staging area for a single ordering session. It is
// owned by one flow at a time and is not safe for concurrent use; it is
// discarded once an order is created from it.
type Cart struct {
	lines    []Line
	notifier notify.Notifier
}

func New(notifier notify.Notifier) *Cart {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Cart{notifier: notifier}
}

// Add puts a menu item in the cart. Adding an item that is already present
// bumps its quantity by one instead of creating a second line.
func (c *Cart) Add(item models.MenuItem) {
	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Quantity++
			c.notifier.Success(fmt.Sprintf("%s added to cart", item.Name))
			return
		}
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	c.notifier.Success(fmt.Sprintf("%s added to cart", item.Name))
}

// ChangeQuantity adjusts a line's quantity by delta. A resulting quantity
// of zero or less removes the line. Unknown ids are ignored.
func (c *Cart) ChangeQuantity(menuItemID int64, delta int) {
	for i := range c.lines {
		if c.lines[i].Item.ID != menuItemID {
			continue
		}
		c.lines[i].Quantity += delta
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Remove drops a line regardless of quantity.
func (c *Cart) Remove(menuItemID int64) {
	for i := range c.lines {
		if c.lines[i].Item.ID == menuItemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.notifier.Info("Item removed from cart")
			return
		}
	}
}

func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) TotalItems() int {
	var count int
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Clear empties the cart after an order has been created from it.
func (c *Cart) Clear() {
	c.lines = nil
}

// OrderItems reduces the cart to the create-order request shape. Prices
// and names are dropped; the server is authoritative for pricing.
func (c *Cart) OrderItems() []models.CreateOrderItem {
	items := make([]models.CreateOrderItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.CreateOrderItem{
			MenuItemID: l.Item.ID,
			Quantity:   l.Quantity,
		})
	}
	return items
}
