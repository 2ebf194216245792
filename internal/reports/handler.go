package reports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

// OrderSource is the read slice of the order store the reports need.
type OrderSource interface {
	ListOrders() ([]*models.Order, error)
	ListOrdersByStatus(status models.OrderStatus) ([]*models.Order, error)
}

type Handler struct {
	Orders OrderSource
	Logger *logger.Logger
}

func NewHandler(orders OrderSource, log *logger.Logger) *Handler {
	return &Handler{Orders: orders, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/download-csv/", h.DownloadCSV)
	})
}

func (h *Handler) load(r *http.Request) ([]*models.Order, error) {
	if status := r.URL.Query().Get("status"); status != "" {
		return h.Orders.ListOrdersByStatus(models.OrderStatus(status))
	}
	return h.Orders.ListOrders()
}

// ListOrders returns the raw order list for the reports screen.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.load(r)
	if err != nil {
		h.Logger.Error("REPORTS", "load orders: "+err.Error())
		http.Error(w, "could not load orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// DownloadCSV streams the same list as a CSV attachment.
func (h *Handler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	orders, err := h.load(r)
	if err != nil {
		h.Logger.Error("REPORTS", "load orders: "+err.Error())
		http.Error(w, "could not load orders", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := WriteOrdersCSV(w, orders); err != nil {
		h.Logger.Error("REPORTS", "write csv: "+err.Error())
	}
}
