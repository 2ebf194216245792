package sse

import (
	"context"
	"sync"

	"kot-system/internal/models"
)

// OrderEventEmitter fans order lifecycle events out to connected SSE clients.
// Cashier screens subscribe to the broadcast stream; a waiting customer
// subscribes to a single order id.
type OrderEventEmitter struct {
	orderClients map[int64][]chan models.OrderEvent
	orderMutex   sync.RWMutex

	cashierClients []chan models.OrderEvent
	cashierMutex   sync.RWMutex
}

func NewOrderEventEmitter() *OrderEventEmitter {
	return &OrderEventEmitter{
		orderClients: make(map[int64][]chan models.OrderEvent),
	}
}

// SubscribeToOrder adds a client interested in a single order. The channel is
// removed when ctx is done.
func (e *OrderEventEmitter) SubscribeToOrder(ctx context.Context, orderID int64) chan models.OrderEvent {
	clientChan := make(chan models.OrderEvent, 10)

	e.orderMutex.Lock()
	e.orderClients[orderID] = append(e.orderClients[orderID], clientChan)
	e.orderMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeOrderClient(orderID, clientChan)
	}()

	return clientChan
}

// SubscribeToCashier adds a client that receives every order event.
func (e *OrderEventEmitter) SubscribeToCashier(ctx context.Context) chan models.OrderEvent {
	clientChan := make(chan models.OrderEvent, 10)

	e.cashierMutex.Lock()
	e.cashierClients = append(e.cashierClients, clientChan)
	e.cashierMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeCashierClient(clientChan)
	}()

	return clientChan
}

// Emit broadcasts an event to the cashier stream and to subscribers of the
// event's order. Sends are non-blocking; a slow client misses the event and
// catches up on its next poll. The locks are held across the sends so a
// subscriber disconnecting mid-broadcast cannot pull a channel out from
// under the loop.
func (e *OrderEventEmitter) Emit(event models.OrderEvent) {
	if event.Order == nil {
		return
	}

	e.cashierMutex.RLock()
	for _, clientChan := range e.cashierClients {
		select {
		case clientChan <- event:
		default:
		}
	}
	e.cashierMutex.RUnlock()

	e.orderMutex.RLock()
	for _, clientChan := range e.orderClients[event.Order.OrderID] {
		select {
		case clientChan <- event:
		default:
		}
	}
	e.orderMutex.RUnlock()
}

// The removed channel is never closed: Emit may still hold a reference to
// it, and a send on a closed channel would panic the process. Subscribers
// exit on their context, not on channel close, and the orphaned channel is
// collected once both sides drop it.
func (e *OrderEventEmitter) removeOrderClient(orderID int64, clientChan chan models.OrderEvent) {
	e.orderMutex.Lock()
	defer e.orderMutex.Unlock()

	clients := e.orderClients[orderID]
	for i, ch := range clients {
		if ch == clientChan {
			e.orderClients[orderID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(e.orderClients[orderID]) == 0 {
		delete(e.orderClients, orderID)
	}
}

func (e *OrderEventEmitter) removeCashierClient(clientChan chan models.OrderEvent) {
	e.cashierMutex.Lock()
	defer e.cashierMutex.Unlock()

	for i, ch := range e.cashierClients {
		if ch == clientChan {
			e.cashierClients = append(e.cashierClients[:i], e.cashierClients[i+1:]...)
			break
		}
	}
}
