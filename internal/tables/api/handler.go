package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kot-system/internal/logger"
	"kot-system/internal/models"
	"kot-system/internal/tables"
	tablesredis "kot-system/internal/tables/redis"
)

type Handler struct {
	TableService *tables.TableService
	SeatHold     *tablesredis.SeatHold
	Logger       *logger.Logger
}

func NewHandler(tableService *tables.TableService, seatHold *tablesredis.SeatHold, log *logger.Logger) *Handler {
	return &Handler{TableService: tableService, SeatHold: seatHold, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.CreateTable)
		r.Get("/", h.ListTables)
		r.Get("/occupied/", h.OccupiedTables)
		r.Get("/{tableId}/", h.GetTable)
		r.Delete("/{tableId}/", h.DeleteTable)
		r.Get("/{tableId}/qr/", h.TableQR)
		r.Post("/toggle-seat/", h.ToggleSeat)
		r.Post("/hold-seats/", h.HoldSeats)
	})
}

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid table JSON: "+err.Error())
		return
	}
	table, err := h.TableService.CreateTable(req)
	if err != nil {
		h.Logger.Error("API", "CreateTable: "+err.Error())
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	list, err := h.TableService.ListTables()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not load tables")
		return
	}
	if list == nil {
		list = []*models.RestaurantTable{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) OccupiedTables(w http.ResponseWriter, r *http.Request) {
	list, err := h.TableService.OccupiedTables()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not load tables")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	table, err := h.TableService.GetTable(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Table not found")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	if err := h.TableService.DeleteTable(id); err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Table deleted", "table_id": id})
}

// TableQR serves the table's menu QR code as a PNG.
func (h *Handler) TableQR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	png, err := h.TableService.TableQR(id, size)
	if err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	var req models.SeatAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid seat JSON: "+err.Error())
		return
	}
	seat, err := h.TableService.ToggleSeat(req)
	if err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seat)
}

type holdSeatsRequest struct {
	TableNumber int      `json:"table_number"`
	SeatNumbers []string `json:"seat_numbers"`
	SessionID   string   `json:"session_id"`
}

// HoldSeats places short-lived holds while the cashier builds the order.
func (h *Handler) HoldSeats(w http.ResponseWriter, r *http.Request) {
	if h.SeatHold == nil {
		writeDetail(w, http.StatusServiceUnavailable, "Seat holds are not enabled")
		return
	}
	var req holdSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid hold JSON: "+err.Error())
		return
	}
	if req.TableNumber < 1 || len(req.SeatNumbers) == 0 || req.SessionID == "" {
		writeDetail(w, http.StatusBadRequest, "table_number, seat_numbers and session_id are required")
		return
	}

	ok, err := h.SeatHold.HoldSeats(req.TableNumber, req.SeatNumbers, req.SessionID)
	if err != nil {
		h.Logger.Error("API", "HoldSeats: "+err.Error())
		writeDetail(w, http.StatusInternalServerError, "Could not hold seats")
		return
	}
	if !ok {
		writeDetail(w, http.StatusConflict, "One or more seats are already held")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Seats held",
		"table_number": req.TableNumber,
		"seat_numbers": req.SeatNumbers,
	})
}

func (h *Handler) tableID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tableId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid table id")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, tables.ErrInvalidTableNumber),
		errors.Is(err, tables.ErrInvalidSeatCount),
		errors.Is(err, tables.ErrInvalidSeatsPerRow),
		errors.Is(err, tables.ErrSeatNotFound):
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
