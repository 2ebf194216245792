package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kot-system/internal/cashier"
	"kot-system/internal/cashier/api"
	"kot-system/internal/logger"
	"kot-system/internal/models"
)

// fakeDB is a minimal in-memory DBLayer for handler tests.
type fakeDB struct {
	orders map[int64]*models.Order
	nextID int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{orders: map[int64]*models.Order{}, nextID: 1}
}

func (f *fakeDB) CreateOrder(order *models.Order) error {
	order.OrderID = f.nextID
	f.nextID++
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakeDB) GetOrderByID(id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return order, nil
}

func (f *fakeDB) ListOrders() ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeDB) ListOrdersByStatus(status models.OrderStatus) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeDB) ListPaidSince(cutoff time.Time) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.Status == models.StatusPaid && o.PaidAt != nil && !o.PaidAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateOrderStatus(order *models.Order) error { return nil }
func (f *fakeDB) ApplyRefund(order *models.Order) error       { return nil }
func (f *fakeDB) OccupySeats(table int, seats []string) error  { return nil }

func newTestRouter() (*chi.Mux, *fakeDB) {
	db := newFakeDB()
	svc := cashier.NewOrderService(db, nil, nil, nil, nil, logger.NewTestLogger())
	handler := api.NewHandler(svc, logger.NewTestLogger())

	r := chi.NewRouter()
	handler.Routes(r)
	return r, db
}

func createBody() []byte {
	body, _ := json.Marshal(models.CreateOrderRequest{
		TableNumber:    4,
		ReceivedAmount: decimal.RequireFromString("500"),
		PaymentMode:    models.PaymentCash,
		Cart: []models.CreateOrderItem{
			{FoodID: 1, Name: "Paneer Tikka", Quantity: 2, Price: decimal.RequireFromString("180")},
			{FoodID: 7, Name: "Cold Coffee", Quantity: 1, Price: decimal.RequireFromString("90")},
		},
	})
	return body
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/cashier-orders/create_order/", bytes.NewReader(createBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.NotZero(t, order.OrderID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("450")))
}

func TestCreateOrderValidationUsesDetail(t *testing.T) {
	r, _ := newTestRouter()

	body, _ := json.Marshal(models.CreateOrderRequest{TableNumber: 4})
	req := httptest.NewRequest(http.MethodPost, "/cashier-orders/create_order/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["detail"])
}

func TestMarkPaidEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	create := httptest.NewRequest(http.MethodPost, "/cashier-orders/create_order/", bytes.NewReader(createBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, create)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/1/mark_paid/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A second mark_paid on the same order is rejected.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/1/mark_paid/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown order id.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/999/mark_paid/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefundEndpointUsesErrorKey(t *testing.T) {
	r, _ := newTestRouter()

	create := httptest.NewRequest(http.MethodPost, "/cashier-orders/create_order/", bytes.NewReader(createBody()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, create)

	// Refund on a pending order fails, and the body carries "error".
	body, _ := json.Marshal(models.RefundRequest{Amount: decimal.RequireFromString("50")})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/1/refund/", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
	assert.Empty(t, resp["detail"])
}

func TestListOrdersStatusFilter(t *testing.T) {
	r, _ := newTestRouter()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/create_order/", bytes.NewReader(createBody())))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cashier-orders/1/mark_paid/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cashier-orders/?status=pending", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var pending []*models.Order
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].OrderID)
}
