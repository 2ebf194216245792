package kotclient

import (
	"context"
	"time"

	"kot-system/internal/models"
)

const defaultWaitingInterval = 3 * time.Second

// WaitingPoller is the customer screen's side of the flow: it watches one
// order until the cashier confirms payment, then fires the redirect exactly
// once. Fetch errors are swallowed; the next tick tries again.
type WaitingPoller struct {
	Client   *Client
	OrderID  int64
	Interval time.Duration

	// OnPaid fires once when the order flips to paid, carrying the final
	// amounts for the success view.
	OnPaid func(order *models.Order)
	// OnCancelled fires once if the cashier voids the order instead.
	OnCancelled func(order *models.Order)
}

func NewWaitingPoller(client *Client, orderID int64, onPaid, onCancelled func(*models.Order)) *WaitingPoller {
	return &WaitingPoller{
		Client:      client,
		OrderID:     orderID,
		Interval:    defaultWaitingInterval,
		OnPaid:      onPaid,
		OnCancelled: onCancelled,
	}
}

// Start polls until the order settles or ctx is cancelled. There is no
// timeout: the customer screen waits as long as it is open.
func (w *WaitingPoller) Start(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	if w.check() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.check() {
				return
			}
		}
	}
}

// check polls once and reports whether the order has settled.
func (w *WaitingPoller) check() bool {
	order, err := w.Client.GetOrder(w.OrderID)
	if err != nil {
		return false
	}

	switch order.Status {
	case models.StatusPaid:
		if w.OnPaid != nil {
			w.OnPaid(order)
		}
		return true
	case models.StatusCancelled:
		if w.OnCancelled != nil {
			w.OnCancelled(order)
		}
		return true
	default:
		return false
	}
}
