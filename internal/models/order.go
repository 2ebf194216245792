package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentMode string

const (
	PaymentCash PaymentMode = "cash"
	PaymentCard PaymentMode = "card"
	PaymentUPI  PaymentMode = "upi"
)

type RefundState string

const (
	RefundNone    RefundState = "none"
	RefundPartial RefundState = "partial"
	RefundFull    RefundState = "full"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID        int64           `bun:"order_id,pk,autoincrement" json:"order_id"`
	TableNumber    int             `bun:"table_number" json:"table_number"`
	TableID        *int64          `bun:"table_id,nullzero" json:"table_id,omitempty"`
	SelectedSeats  []string        `bun:"selected_seats,array" json:"selected_seats,omitempty"`
	TotalAmount    decimal.Decimal `bun:"total_amount" json:"total_amount"`
	ReceivedAmount decimal.Decimal `bun:"received_amount" json:"received_amount"`
	BalanceAmount  decimal.Decimal `bun:"balance_amount" json:"balance_amount"`
	RefundedAmount decimal.Decimal `bun:"refunded_amount" json:"refunded_amount"`
	RefundReason   string          `bun:"refund_reason" json:"refund_reason,omitempty"`
	PaymentMode    PaymentMode     `bun:"payment_mode" json:"payment_mode"`
	Status         OrderStatus     `bun:"status" json:"status"`
	WaiterID       *int64          `bun:"waiter_id,nullzero" json:"waiter_id,omitempty"`
	WaiterName     string          `bun:"waiter_name" json:"waiter_name,omitempty"`
	Items          []*OrderItem    `bun:"rel:has-many,join:order_id=order_id" json:"items"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	PaidAt         *time.Time      `bun:"paid_at,nullzero" json:"paid_at,omitempty"`
	CancelledAt    *time.Time      `bun:"cancelled_at,nullzero" json:"cancelled_at,omitempty"`
	RefundedAt     *time.Time      `bun:"refunded_at,nullzero" json:"refunded_at,omitempty"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID       int64           `bun:"id,pk,autoincrement" json:"-"`
	OrderID  int64           `bun:"order_id" json:"-"`
	FoodID   int64           `bun:"food_id" json:"food_id"`
	Name     string          `bun:"name" json:"name"`
	Quantity int             `bun:"quantity" json:"quantity"`
	Price    decimal.Decimal `bun:"price" json:"price"`
	Category FoodCategory    `bun:"category" json:"category"`
}

// Subtotal is recomputed on every use, never stored.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Balance computes the change owed to the customer. Negative balances clamp
// to zero: a short payment is a validation failure, not negative change.
func Balance(received, total decimal.Decimal) decimal.Decimal {
	b := received.Sub(total)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// RemainingRefundable is what can still be refunded on the order.
func (o *Order) RemainingRefundable() decimal.Decimal {
	return o.TotalAmount.Sub(o.RefundedAmount)
}

// RefundState is derived from the amounts; there is no stored "refunded"
// status. Both the service and the client use this single derivation.
func (o *Order) RefundState() RefundState {
	if o.RefundedAmount.IsZero() || o.RefundedAmount.IsNegative() {
		return RefundNone
	}
	if o.RefundedAmount.GreaterThanOrEqual(o.TotalAmount) {
		return RefundFull
	}
	return RefundPartial
}

// CreateOrderRequest is the wire shape of POST /cashier-orders/create_order/.
type CreateOrderRequest struct {
	TableNumber    int               `json:"table_number"`
	TableID        *int64            `json:"table_id,omitempty"`
	SelectedSeats  []string          `json:"selected_seats,omitempty"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	ReceivedAmount decimal.Decimal   `json:"received_amount"`
	PaymentMode    PaymentMode       `json:"payment_mode"`
	Waiter         *int64            `json:"waiter,omitempty"`
	WaiterName     string            `json:"waiter_name,omitempty"`
	Cart           []CreateOrderItem `json:"cart"`
}

type CreateOrderItem struct {
	FoodID   int64           `json:"food_id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Category FoodCategory    `json:"category,omitempty"`
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

type RefundResponse struct {
	Message         string          `json:"message"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	IsFullyRefunded bool            `json:"is_fully_refunded"`
}

// CollectionSummary is today's takings broken down by payment mode.
type CollectionSummary struct {
	Total decimal.Decimal `json:"total"`
	Cash  decimal.Decimal `json:"cash"`
	Card  decimal.Decimal `json:"card"`
	UPI   decimal.Decimal `json:"upi"`
}

// OrderEvent is the Kafka payload for order lifecycle changes.
type OrderEvent struct {
	Type      string    `json:"type"`
	Order     *Order    `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}
