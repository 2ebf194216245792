package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kot-system/internal/logger"
	"kot-system/internal/sse"
)

// SSEHandler streams order lifecycle events so the cashier board and the
// customer waiting screen can update without tearing down their pollers.
type SSEHandler struct {
	Emitter *sse.OrderEventEmitter
	Logger  *logger.Logger
}

func NewSSEHandler(emitter *sse.OrderEventEmitter, log *logger.Logger) *SSEHandler {
	return &SSEHandler{Emitter: emitter, Logger: log}
}

func (h *SSEHandler) Routes(r chi.Router) {
	r.Get("/cashier-orders/stream/", h.StreamCashier)
	r.Get("/cashier-orders/{orderId}/stream/", h.StreamOrder)
}

// StreamCashier pushes every order event to the cashier dashboard.
func (h *SSEHandler) StreamCashier(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	events := h.Emitter.SubscribeToCashier(r.Context())
	h.Logger.Info("SSE", "cashier dashboard connected")

	for {
		select {
		case <-r.Context().Done():
			h.Logger.Info("SSE", "cashier dashboard disconnected")
			return
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// StreamOrder pushes events for a single order to the customer screen.
func (h *SSEHandler) StreamOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	events := h.Emitter.SubscribeToOrder(r.Context(), id)
	h.Logger.Info("SSE", fmt.Sprintf("order #%d stream connected", id))

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}
