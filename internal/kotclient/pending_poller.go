package kotclient

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

const defaultPendingInterval = 5 * time.Second

// PendingPoller keeps the cashier's pending-order board current. Every tick
// it fetches the full order list, filters to pending and replaces the board
// wholesale. A generation counter discards responses that arrive after a
// newer poll has already been applied.
type PendingPoller struct {
	Client   *Client
	Interval time.Duration
	// OnUpdate receives the complete pending list each time it changes
	// hands. It is called from the poller goroutine.
	OnUpdate func(pending []*models.Order)
	Logger   *logger.Logger

	generation atomic.Uint64
	applied    atomic.Uint64
}

func NewPendingPoller(client *Client, onUpdate func([]*models.Order), log *logger.Logger) *PendingPoller {
	return &PendingPoller{
		Client:   client,
		Interval: defaultPendingInterval,
		OnUpdate: onUpdate,
		Logger:   log,
	}
}

// Start polls until ctx is cancelled. It polls once immediately so the
// board is not empty for the first interval.
func (p *PendingPoller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.Poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll fetches once and applies the result unless a newer poll has already
// been applied. Fetch errors are logged and the previous board stays.
func (p *PendingPoller) Poll() {
	gen := p.generation.Add(1)

	orders, err := p.Client.ListOrders()
	if err != nil {
		p.Logger.Warn("POLL", "pending orders fetch failed: "+err.Error())
		return
	}

	pending := make([]*models.Order, 0, len(orders))
	for _, order := range orders {
		if order.Status == models.StatusPending {
			pending = append(pending, order)
		}
	}

	// Discard if a later poll already applied its response.
	for {
		applied := p.applied.Load()
		if gen <= applied {
			return
		}
		if p.applied.CompareAndSwap(applied, gen) {
			break
		}
	}
	p.OnUpdate(pending)
}

// MarkPaid finalizes one order and re-polls immediately instead of patching
// the board optimistically.
func (p *PendingPoller) MarkPaid(orderID int64) error {
	if err := p.Client.MarkPaid(orderID); err != nil {
		p.Logger.Error("POLL", fmt.Sprintf("mark order #%d paid: %v", orderID, err))
		return err
	}
	p.Poll()
	return nil
}
