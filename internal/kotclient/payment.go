package kotclient

import (
	"github.com/shopspring/decimal"

	"kot-system/internal/models"
)

// Payment is the capture step of the order flow. Cash and online payments
// both feed the same create-order call; they differ only in mode and
// received amount.
type Payment interface {
	Mode() models.PaymentMode
	// Received is the amount to submit for the given order total.
	Received(total decimal.Decimal) decimal.Decimal
	// Ready reports whether the capture is complete enough to submit.
	// Submission stays disabled until it is.
	Ready(total decimal.Decimal) bool
}

// CashPayment carries the tendered amount typed in by the cashier.
type CashPayment struct {
	Tendered decimal.Decimal
}

func (p CashPayment) Mode() models.PaymentMode { return models.PaymentCash }

func (p CashPayment) Received(total decimal.Decimal) decimal.Decimal {
	return p.Tendered
}

// Ready is false while the tendered amount is short of the total.
func (p CashPayment) Ready(total decimal.Decimal) bool {
	return p.Tendered.GreaterThanOrEqual(total)
}

// Change is the display-only balance owed back to the customer. The server
// recomputes and stores the authoritative balance.
func (p CashPayment) Change(total decimal.Decimal) decimal.Decimal {
	return models.Balance(p.Tendered, total)
}

// OnlinePayment carries the selected method, UPI or card. The received
// amount always equals the total; partial online payment is not modeled.
type OnlinePayment struct {
	Method models.PaymentMode
}

func (p OnlinePayment) Mode() models.PaymentMode { return p.Method }

func (p OnlinePayment) Received(total decimal.Decimal) decimal.Decimal {
	return total
}

// Ready is false until one of the fixed methods is selected.
func (p OnlinePayment) Ready(total decimal.Decimal) bool {
	return p.Method == models.PaymentUPI || p.Method == models.PaymentCard
}
