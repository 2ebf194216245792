package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kot-system/internal/logger"
	"kot-system/internal/menu"
	"kot-system/internal/models"
)

type Handler struct {
	MenuService *menu.MenuService
	Logger      *logger.Logger
}

func NewHandler(menuService *menu.MenuService, log *logger.Logger) *Handler {
	return &Handler{MenuService: menuService, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/menu", func(r chi.Router) {
		r.Post("/items/", h.CreateItem)
		r.Get("/items/", h.ListItems)
		r.Get("/items/orderable/", h.OrderableItems)
		r.Get("/items/{itemId}/", h.GetItem)
		r.Put("/items/{itemId}/", h.UpdateItem)
		r.Patch("/items/{itemId}/stock/", h.UpdateStock)
		r.Delete("/items/{itemId}/", h.DeleteItem)
		r.Post("/sub-categories/", h.CreateSubCategory)
		r.Get("/sub-categories/", h.ListSubCategories)
	})
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.FoodItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid food item JSON: "+err.Error())
		return
	}
	if err := h.MenuService.CreateItem(&item); err != nil {
		h.Logger.Error("API", "CreateItem: "+err.Error())
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	category := models.FoodCategory(r.URL.Query().Get("category"))
	items, err := h.MenuService.ListItems(category)
	if err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	if items == nil {
		items = []*models.FoodItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// OrderableItems is what the cashier's menu page loads: only items that can
// be put on a ticket right now.
func (h *Handler) OrderableItems(w http.ResponseWriter, r *http.Request) {
	category := models.FoodCategory(r.URL.Query().Get("category"))
	items, err := h.MenuService.OrderableItems(category)
	if err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	if items == nil {
		items = []*models.FoodItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	item, err := h.MenuService.GetItem(id)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Food item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	var item models.FoodItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid food item JSON: "+err.Error())
		return
	}
	item.ID = id
	if err := h.MenuService.UpdateItem(&item); err != nil {
		h.Logger.Error("API", "UpdateItem: "+err.Error())
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	var req models.StockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid stock JSON: "+err.Error())
		return
	}
	if err := h.MenuService.SetStockStatus(id, req.StockStatus); err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Stock status updated",
		"item_id":      id,
		"stock_status": req.StockStatus,
	})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	if err := h.MenuService.DeleteItem(id); err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Food item deleted", "item_id": id})
}

func (h *Handler) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	var sub models.SubCategory
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid sub-category JSON: "+err.Error())
		return
	}
	if err := h.MenuService.CreateSubCategory(&sub); err != nil {
		writeDetail(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) ListSubCategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.MenuService.ListSubCategories()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not load sub-categories")
		return
	}
	if subs == nil {
		subs = []*models.SubCategory{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid item id")
		return 0, false
	}
	return id, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, menu.ErrNameRequired),
		errors.Is(err, menu.ErrInvalidPrice),
		errors.Is(err, menu.ErrBadCategory),
		errors.Is(err, menu.ErrBadStock),
		errors.Is(err, menu.ErrBadTimeWindow):
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
