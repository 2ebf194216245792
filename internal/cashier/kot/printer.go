// Package kot renders kitchen order tickets. A paid order produces up to two
// tickets, one per prep section (food kitchen and cafe counter), mirroring
// the two physical printers behind the counter.
package kot

import (
	"fmt"
	"io"
	"strings"
	"time"

	"kot-system/internal/logger"
	"kot-system/internal/models"
	"kot-system/internal/utils"
)

const (
	ticketWidth = 32

	// SectionFood and SectionCafe are the ticket headings.
	SectionFood = "FOOD SECTION"
	SectionCafe = "CAFE SECTION"
)

// Printer writes tickets to out. In production out is the printer spooler
// device; tests hand it a buffer.
type Printer struct {
	out    io.Writer
	logger *logger.Logger
	// delay between the two section tickets, so a single-feed printer
	// finishes one before the next starts.
	delay time.Duration
	sleep func(time.Duration)
}

func NewPrinter(out io.Writer, log *logger.Logger) *Printer {
	return &Printer{
		out:    out,
		logger: log,
		delay:  300 * time.Millisecond,
		sleep:  time.Sleep,
	}
}

// SetSleep replaces the inter-ticket sleep. Tests use it to run instantly.
func (p *Printer) SetSleep(sleep func(time.Duration)) {
	p.sleep = sleep
}

// PrintPaidOrder partitions the order's items by category and prints one
// ticket per non-empty section, food first.
func (p *Printer) PrintPaidOrder(order *models.Order) error {
	var food, cafe []*models.OrderItem
	for _, item := range order.Items {
		if item.Category == models.CategoryCafe {
			cafe = append(cafe, item)
		} else {
			food = append(food, item)
		}
	}

	printed := false
	if len(food) > 0 {
		if err := p.printSection(order, SectionFood, food); err != nil {
			return err
		}
		printed = true
	}
	if len(cafe) > 0 {
		if printed {
			p.sleep(p.delay)
		}
		if err := p.printSection(order, SectionCafe, cafe); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printSection(order *models.Order, section string, items []*models.OrderItem) error {
	ticket := RenderTicket(order, section, items)
	if _, err := io.WriteString(p.out, ticket); err != nil {
		return fmt.Errorf("print %s ticket for order %d: %w", section, order.OrderID, err)
	}
	if p.logger != nil {
		p.logger.LogPrint(section, order.OrderID)
	}
	return nil
}

// RenderTicket builds a fixed-width text ticket for one section of an order.
func RenderTicket(order *models.Order, section string, items []*models.OrderItem) string {
	var b strings.Builder
	rule := strings.Repeat("=", ticketWidth)

	b.WriteString(rule + "\n")
	b.WriteString(center(section) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Order #%d    Table %d\n", order.OrderID, order.TableNumber))
	if len(order.SelectedSeats) > 0 {
		b.WriteString("Seats: " + strings.Join(order.SelectedSeats, ", ") + "\n")
	}
	if order.WaiterName != "" {
		b.WriteString("Waiter: " + order.WaiterName + "\n")
	}
	b.WriteString(order.CreatedAt.Format("02 Jan 2006 15:04") + "\n")
	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")

	for _, item := range items {
		b.WriteString(fmt.Sprintf("%dx %s\n", item.Quantity, item.Name))
	}

	b.WriteString(strings.Repeat("-", ticketWidth) + "\n")
	b.WriteString("Ref: " + utils.GenerateReceiptRef() + "\n")
	b.WriteString(rule + "\n\n")
	return b.String()
}

func center(s string) string {
	if len(s) >= ticketWidth {
		return s
	}
	pad := (ticketWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
