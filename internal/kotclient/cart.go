package kotclient

import (
	"github.com/shopspring/decimal"

	"kot-system/internal/models"
)

// CartItem is a menu item snapshot held in the draft cart. Name and price
// are copied at selection time so later menu edits do not change an open
// draft.
type CartItem struct {
	FoodID   int64
	Name     string
	Price    decimal.Decimal
	Category models.FoodCategory
}

type cartLine struct {
	item     CartItem
	quantity int
}

// Cart is the draft order being built at a terminal. It is plain in-memory
// state: it never talks to the network and is thrown away on submission.
// Lines keep their insertion order.
type Cart struct {
	lines []*cartLine
	index map[int64]*cartLine
}

func NewCart() *Cart {
	return &Cart{index: make(map[int64]*cartLine)}
}

// AddItem toggles an item: absent items are inserted at quantity 1, present
// items are removed entirely. Tapping a menu tile therefore selects or
// deselects it regardless of quantity.
func (c *Cart) AddItem(item CartItem) {
	if _, ok := c.index[item.FoodID]; ok {
		c.remove(item.FoodID)
		return
	}
	line := &cartLine{item: item, quantity: 1}
	c.lines = append(c.lines, line)
	c.index[item.FoodID] = line
}

// SetQuantity adjusts a line's quantity by delta. The quantity floors at
// zero and a line at zero is dropped from the cart. Unknown ids are a no-op.
func (c *Cart) SetQuantity(foodID int64, delta int) {
	line, ok := c.index[foodID]
	if !ok {
		return
	}
	line.quantity += delta
	if line.quantity <= 0 {
		c.remove(foodID)
	}
}

// Quantity returns the current quantity for an item, zero when absent.
func (c *Cart) Quantity(foodID int64) int {
	if line, ok := c.index[foodID]; ok {
		return line.quantity
	}
	return 0
}

// Total is the sum of price times quantity over all lines, recomputed on
// every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.item.Price.Mul(decimal.NewFromInt(int64(line.quantity))))
	}
	return total
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.lines {
		n += line.quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Items returns the cart as order request lines, in insertion order.
func (c *Cart) Items() []models.CreateOrderItem {
	items := make([]models.CreateOrderItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, models.CreateOrderItem{
			FoodID:   line.item.FoodID,
			Name:     line.item.Name,
			Quantity: line.quantity,
			Price:    line.item.Price,
			Category: line.item.Category,
		})
	}
	return items
}

// Clear empties the cart. Called after a successful submission.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[int64]*cartLine)
}

func (c *Cart) remove(foodID int64) {
	delete(c.index, foodID)
	for i, line := range c.lines {
		if line.item.FoodID == foodID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}
