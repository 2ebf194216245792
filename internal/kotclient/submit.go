package kotclient

import (
	"errors"
	"sync/atomic"

	"kot-system/internal/models"
)

var (
	ErrNoTable         = errors.New("select a table before submitting")
	ErrEmptyCart       = errors.New("the cart is empty")
	ErrPaymentNotReady = errors.New("payment capture is incomplete")
	ErrSubmitInFlight  = errors.New("an order submission is already in flight")
)

// Submitter turns a draft cart into a created order. It owns the
// double-click guard: at most one submission is in flight per terminal.
type Submitter struct {
	Client   *Client
	Session  *Session
	inFlight atomic.Bool
}

func NewSubmitter(client *Client, session *Session) *Submitter {
	return &Submitter{Client: client, Session: session}
}

// Submit validates locally, sends the create-order request and clears the
// cart on success. On any failure the cart is left intact so the user can
// fix the problem and resubmit; nothing is retried automatically.
func (s *Submitter) Submit(cart *Cart, tableNumber int, seats []string, payment Payment) (*models.Order, error) {
	if tableNumber < 1 {
		return nil, ErrNoTable
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	total := cart.Total()
	if !payment.Ready(total) {
		return nil, ErrPaymentNotReady
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer s.inFlight.Store(false)

	waiterID, waiterName := s.Session.Waiter()
	req := models.CreateOrderRequest{
		TableNumber:    tableNumber,
		SelectedSeats:  seats,
		TotalAmount:    total,
		ReceivedAmount: payment.Received(total),
		PaymentMode:    payment.Mode(),
		Waiter:         waiterID,
		WaiterName:     waiterName,
		Cart:           cart.Items(),
	}

	order, err := s.Client.CreateOrder(req)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	return order, nil
}
