// Package payments integrates the optional Stripe card flow. Counter
// payments (cash, UPI via the counter QR) never touch Stripe; only
// card-at-table payments create a payment intent.
package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

var ErrStripeDisabled = errors.New("stripe payments are not enabled")

// OrderFinalizer is the slice of the order service the gateway needs to
// settle orders from webhook events.
type OrderFinalizer interface {
	GetOrder(id int64) (*models.Order, error)
	MarkPaid(id int64) (*models.Order, error)
	CancelOrder(id int64) (*models.Order, error)
}

type Gateway struct {
	Orders        OrderFinalizer
	Logger        *logger.Logger
	WebhookSecret string
	Enabled       bool

	mu       sync.Mutex
	inflight map[int64]bool
}

func NewGateway(orders OrderFinalizer, log *logger.Logger, secretKey, webhookSecret string, enabled bool) *Gateway {
	if enabled {
		stripe.Key = secretKey
	}
	return &Gateway{
		Orders:        orders,
		Logger:        log,
		WebhookSecret: webhookSecret,
		Enabled:       enabled,
		inflight:      make(map[int64]bool),
	}
}

// CreatePaymentIntent opens a card payment for a pending order. Amounts go
// to Stripe in paise.
func (g *Gateway) CreatePaymentIntent(orderID int64) (*stripe.PaymentIntent, error) {
	if !g.Enabled {
		return nil, ErrStripeDisabled
	}

	// One intent creation per order at a time.
	g.mu.Lock()
	if g.inflight[orderID] {
		g.mu.Unlock()
		return nil, fmt.Errorf("payment intent for order %d is already being created", orderID)
	}
	g.inflight[orderID] = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.inflight, orderID)
		g.mu.Unlock()
	}()

	order, err := g.Orders.GetOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("order %d not found: %w", orderID, err)
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("cannot open a card payment for a %s order", order.Status)
	}

	amountPaise := order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountPaise),
		Currency: stripe.String(string(stripe.CurrencyINR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", strconv.FormatInt(orderID, 10))

	intent, err := paymentintent.New(params)
	if err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("create intent for order #%d: %v", orderID, err))
		return nil, err
	}

	g.Logger.Info("PAYMENT", fmt.Sprintf("intent %s opened for order #%d (%s INR)", intent.ID, orderID, order.TotalAmount))
	return intent, nil
}

// HandleWebhook settles orders from Stripe events: a succeeded intent marks
// the order paid, a failed one cancels it.
func (g *Gateway) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if !g.Enabled {
		http.Error(w, "stripe is not enabled", http.StatusServiceUnavailable)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	opts := webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), g.WebhookSecret, opts)
	if err != nil {
		g.Logger.Error("WEBHOOK", "signature verification failed: "+err.Error())
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			g.Logger.Error("WEBHOOK", err.Error())
			http.Error(w, "invalid event data", http.StatusBadRequest)
			return
		}
		if _, err := g.Orders.MarkPaid(orderID); err != nil {
			g.Logger.Error("WEBHOOK", fmt.Sprintf("settle order #%d: %v", orderID, err))
			http.Error(w, "failed to settle order", http.StatusInternalServerError)
			return
		}
		g.Logger.Info("WEBHOOK", fmt.Sprintf("order #%d settled by card", orderID))

	case "payment_intent.payment_failed":
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			g.Logger.Error("WEBHOOK", err.Error())
			http.Error(w, "invalid event data", http.StatusBadRequest)
			return
		}
		if _, err := g.Orders.CancelOrder(orderID); err != nil {
			g.Logger.Error("WEBHOOK", fmt.Sprintf("cancel order #%d after failed payment: %v", orderID, err))
		}

	default:
		g.Logger.Debug("WEBHOOK", "ignoring event "+string(event.Type))
	}

	w.WriteHeader(http.StatusOK)
}

func orderIDFromEvent(event stripe.Event) (int64, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return 0, fmt.Errorf("unmarshal payment intent: %w", err)
	}
	raw, ok := intent.Metadata["order_id"]
	if !ok {
		return 0, errors.New("payment intent has no order_id metadata")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad order_id metadata %q", raw)
	}
	return id, nil
}
