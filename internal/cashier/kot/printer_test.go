package kot_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kot-system/internal/cashier/kot"
	"kot-system/internal/models"
)

func paidOrder(items ...*models.OrderItem) *models.Order {
	return &models.Order{
		OrderID:     42,
		TableNumber: 7,
		WaiterName:  "Ravi",
		Status:      models.StatusPaid,
		Items:       items,
		CreatedAt:   time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
	}
}

func item(name string, qty int, category models.FoodCategory) *models.OrderItem {
	return &models.OrderItem{
		Name:     name,
		Quantity: qty,
		Price:    decimal.RequireFromString("100"),
		Category: category,
	}
}

func TestPrintPaidOrderSplitsSections(t *testing.T) {
	var buf bytes.Buffer
	printer := kot.NewPrinter(&buf, nil)

	order := paidOrder(
		item("Paneer Tikka", 2, models.CategoryFood),
		item("Cold Coffee", 1, models.CategoryCafe),
		item("Garlic Naan", 4, models.CategoryFood),
	)

	err := printer.PrintPaidOrder(order)
	assert.NoError(t, err)

	out := buf.String()
	foodAt := strings.Index(out, kot.SectionFood)
	cafeAt := strings.Index(out, kot.SectionCafe)
	assert.NotEqual(t, -1, foodAt)
	assert.NotEqual(t, -1, cafeAt)
	assert.Less(t, foodAt, cafeAt, "food ticket prints before the cafe ticket")

	assert.Contains(t, out, "2x Paneer Tikka")
	assert.Contains(t, out, "4x Garlic Naan")
	assert.Contains(t, out, "1x Cold Coffee")
	assert.Contains(t, out, "Order #42    Table 7")
	assert.Contains(t, out, "Waiter: Ravi")
}

func TestPrintPaidOrderSkipsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	printer := kot.NewPrinter(&buf, nil)

	order := paidOrder(item("Masala Chai", 2, models.CategoryCafe))

	err := printer.PrintPaidOrder(order)
	assert.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, kot.SectionFood)
	assert.Contains(t, out, kot.SectionCafe)
}

func TestPrintPaidOrderDelaysBetweenTickets(t *testing.T) {
	var buf bytes.Buffer
	printer := kot.NewPrinter(&buf, nil)

	var slept []time.Duration
	printer.SetSleep(func(d time.Duration) { slept = append(slept, d) })

	// Single section: no delay.
	assert.NoError(t, printer.PrintPaidOrder(paidOrder(item("Dal Fry", 1, models.CategoryFood))))
	assert.Empty(t, slept)

	// Both sections: exactly one delay between the two tickets.
	order := paidOrder(
		item("Dal Fry", 1, models.CategoryFood),
		item("Espresso", 1, models.CategoryCafe),
	)
	assert.NoError(t, printer.PrintPaidOrder(order))
	assert.Len(t, slept, 1)
}

func TestRenderTicketIncludesSeats(t *testing.T) {
	order := paidOrder(item("Dal Fry", 1, models.CategoryFood))
	order.SelectedSeats = []string{"A1", "A2"}

	ticket := kot.RenderTicket(order, kot.SectionFood, order.Items)
	assert.Contains(t, ticket, "Seats: A1, A2")
	assert.Contains(t, ticket, "14 Mar 2026 19:30")
}
