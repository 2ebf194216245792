package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kot-system/internal/cashier"
	"kot-system/internal/logger"
	"kot-system/internal/models"
)

type Handler struct {
	OrderService *cashier.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *cashier.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, Logger: log}
}

// Routes mounts the cashier order endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/cashier-orders", func(r chi.Router) {
		r.Post("/create_order/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/today_collection/", h.TodayCollection)
		r.Get("/{orderId}/", h.GetOrder)
		r.Post("/{orderId}/mark_paid/", h.MarkPaid)
		r.Post("/{orderId}/cancel_order/", h.CancelOrder)
		r.Post("/{orderId}/refund/", h.Refund)
	})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", "CreateOrder: bad payload: "+err.Error())
		writeDetail(w, http.StatusBadRequest, "Invalid order JSON: "+err.Error())
		return
	}

	order, err := h.OrderService.PlaceOrder(req)
	if err != nil {
		h.Logger.Error("API", "CreateOrder: "+err.Error())
		writeDetail(w, statusFor(err), err.Error())
		return
	}

	h.Logger.LogAPI(r.Method, r.URL.Path, "201")
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []*models.Order
		err    error
	)
	// ?status=pending narrows server-side; the cashier UI also filters
	// client-side, so the unfiltered list stays the default.
	if status := r.URL.Query().Get("status"); status != "" {
		orders, err = h.OrderService.DB.ListOrdersByStatus(models.OrderStatus(status))
	} else {
		orders, err = h.OrderService.ListOrders()
	}
	if err != nil {
		h.Logger.Error("API", "ListOrders: "+err.Error())
		writeDetail(w, http.StatusInternalServerError, "Could not load orders")
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.OrderService.GetOrder(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.OrderService.MarkPaid(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkPaid #%d: %v", id, err))
		writeDetail(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Order marked as paid",
		"order_id": order.OrderID,
	})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.OrderService.CancelOrder(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelOrder #%d: %v", id, err))
		writeDetail(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Order cancelled successfully",
		"order_id": order.OrderID,
	})
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid refund JSON: "+err.Error())
		return
	}

	resp, err := h.OrderService.Refund(id, req.Amount, req.Reason)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Refund #%d: %v", id, err))
		// The refund endpoint reports failures under "error", not "detail".
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) TodayCollection(w http.ResponseWriter, r *http.Request) {
	summary, err := h.OrderService.TodayCollection()
	if err != nil {
		h.Logger.Error("API", "TodayCollection: "+err.Error())
		writeDetail(w, http.StatusInternalServerError, "Could not compute collection")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid order id")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, cashier.ErrInvalidTable),
		errors.Is(err, cashier.ErrEmptyCart),
		errors.Is(err, cashier.ErrInvalidQuantity),
		errors.Is(err, cashier.ErrShortPayment),
		errors.Is(err, cashier.ErrAlreadyPaid),
		errors.Is(err, cashier.ErrOrderNotPending),
		errors.Is(err, cashier.ErrOrderNotPaid),
		errors.Is(err, cashier.ErrInvalidRefund),
		errors.Is(err, cashier.ErrRefundExceedsMax),
		errors.Is(err, cashier.ErrAlreadyCancelled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
