package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Gateway *Gateway
}

func NewHandler(gateway *Gateway) *Handler {
	return &Handler{Gateway: gateway}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/{orderId}/intent/", h.CreateIntent)
		r.Post("/webhook/", h.Gateway.HandleWebhook)
	})
}

func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	intent, err := h.Gateway.CreatePaymentIntent(orderID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrStripeDisabled) {
			status = http.StatusServiceUnavailable
		}
		writeDetail(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
	})
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
