package reports_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kot-system/internal/models"
	"kot-system/internal/reports"
)

func TestWriteOrdersCSV(t *testing.T) {
	paidAt := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	orders := []*models.Order{
		{
			OrderID:        12,
			TableNumber:    4,
			SelectedSeats:  []string{"A1", "A2"},
			Status:         models.StatusPaid,
			PaymentMode:    models.PaymentCash,
			TotalAmount:    decimal.RequireFromString("450"),
			ReceivedAmount: decimal.RequireFromString("500"),
			BalanceAmount:  decimal.RequireFromString("50"),
			RefundedAmount: decimal.RequireFromString("100"),
			WaiterName:     "Ravi",
			CreatedAt:      paidAt,
			Items: []*models.OrderItem{
				{Name: "Paneer Tikka", Quantity: 2},
				{Name: "Cold Coffee", Quantity: 1},
			},
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, reports.WriteOrdersCSV(&buf, orders))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2, "header plus one row")

	header := records[0]
	row := records[1]
	assert.Equal(t, "order_id", header[0])
	assert.Equal(t, "12", row[0])
	assert.Equal(t, "A1 A2", row[3])
	assert.Equal(t, "paid", row[4])
	assert.Equal(t, "450.00", row[6])
	assert.Equal(t, "partial", row[10], "refund state is derived from the amounts")
	assert.Equal(t, "2x Paneer Tikka; 1x Cold Coffee", row[12])
}

func TestWriteOrdersCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, reports.WriteOrdersCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
