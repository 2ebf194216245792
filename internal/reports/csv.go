// Package reports produces the manager-facing order exports.
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"kot-system/internal/models"
)

var csvHeader = []string{
	"order_id", "created_at", "table_number", "seats", "status",
	"payment_mode", "total_amount", "received_amount", "balance_amount",
	"refunded_amount", "refund_state", "waiter", "items",
}

// WriteOrdersCSV streams the orders as CSV rows. Item lines are folded into
// one cell as "2x Paneer Tikka; 1x Cold Coffee".
func WriteOrdersCSV(w io.Writer, orders []*models.Order) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, order := range orders {
		items := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
		}

		row := []string{
			fmt.Sprintf("%d", order.OrderID),
			order.CreatedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", order.TableNumber),
			strings.Join(order.SelectedSeats, " "),
			string(order.Status),
			string(order.PaymentMode),
			order.TotalAmount.StringFixed(2),
			order.ReceivedAmount.StringFixed(2),
			order.BalanceAmount.StringFixed(2),
			order.RefundedAmount.StringFixed(2),
			string(order.RefundState()),
			order.WaiterName,
			strings.Join(items, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for order %d: %w", order.OrderID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
