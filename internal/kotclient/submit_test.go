package kotclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kot-system/internal/kotclient"
	"kot-system/internal/logger"
	"kot-system/internal/models"
)

func cashierSession() *kotclient.Session {
	s := kotclient.NewSession()
	s.Login("test-token", models.UserInfo{ID: 3, Username: "ravi", Role: models.RoleCashier})
	return s
}

func TestSubmitBuildsPayload(t *testing.T) {
	var got models.CreateOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cashier-orders/create_order/", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Order{OrderID: 55, Status: models.StatusPending})
	}))
	defer server.Close()

	client := kotclient.NewClient(server.URL, nil, logger.NewTestLogger())
	submitter := kotclient.NewSubmitter(client, cashierSession())

	cart := kotclient.NewCart()
	cart.AddItem(kotclient.CartItem{FoodID: 7, Name: "Tea", Price: decimal.RequireFromString("20"), Category: models.CategoryCafe})
	cart.SetQuantity(7, 1) // 2x tea

	payment := kotclient.CashPayment{Tendered: decimal.RequireFromString("50")}
	order, err := submitter.Submit(cart, 4, nil, payment)

	assert.NoError(t, err)
	assert.Equal(t, int64(55), order.OrderID)

	assert.Equal(t, 4, got.TableNumber)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("40")))
	assert.True(t, got.ReceivedAmount.Equal(decimal.RequireFromString("50")))
	assert.Equal(t, models.PaymentCash, got.PaymentMode)
	assert.Equal(t, "ravi", got.WaiterName)
	assert.Len(t, got.Cart, 1)
	assert.Equal(t, 2, got.Cart[0].Quantity)

	// The cart is cleared only after a successful submission.
	assert.True(t, cart.IsEmpty())
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := kotclient.NewClient(server.URL, nil, logger.NewTestLogger())
	submitter := kotclient.NewSubmitter(client, cashierSession())

	cart := kotclient.NewCart()

	// Empty cart.
	_, err := submitter.Submit(cart, 4, nil, kotclient.CashPayment{Tendered: decimal.RequireFromString("50")})
	assert.ErrorIs(t, err, kotclient.ErrEmptyCart)

	cart.AddItem(kotclient.CartItem{FoodID: 7, Name: "Tea", Price: decimal.RequireFromString("20")})

	// No table.
	_, err = submitter.Submit(cart, 0, nil, kotclient.CashPayment{Tendered: decimal.RequireFromString("50")})
	assert.ErrorIs(t, err, kotclient.ErrNoTable)

	// Short cash payment.
	_, err = submitter.Submit(cart, 4, nil, kotclient.CashPayment{Tendered: decimal.RequireFromString("10")})
	assert.ErrorIs(t, err, kotclient.ErrPaymentNotReady)

	// Online with no method chosen.
	_, err = submitter.Submit(cart, 4, nil, kotclient.OnlinePayment{})
	assert.ErrorIs(t, err, kotclient.ErrPaymentNotReady)

	assert.Equal(t, 0, calls, "validation failures never reach the network")
	assert.False(t, cart.IsEmpty(), "cart survives failed submissions")
}

func TestSubmitPreservesCartOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid table"})
	}))
	defer server.Close()

	client := kotclient.NewClient(server.URL, nil, logger.NewTestLogger())
	submitter := kotclient.NewSubmitter(client, cashierSession())

	cart := kotclient.NewCart()
	cart.AddItem(kotclient.CartItem{FoodID: 7, Name: "Tea", Price: decimal.RequireFromString("20")})

	_, err := submitter.Submit(cart, 4, nil, kotclient.CashPayment{Tendered: decimal.RequireFromString("50")})

	var apiErr *kotclient.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid table", apiErr.Message)
	assert.False(t, cart.IsEmpty())
}

func TestSubmitGuardCollapsesConcurrentClicks(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Order{OrderID: 1, Status: models.StatusPending})
	}))
	defer server.Close()

	client := kotclient.NewClient(server.URL, nil, logger.NewTestLogger())
	submitter := kotclient.NewSubmitter(client, cashierSession())

	cart := kotclient.NewCart()
	cart.AddItem(kotclient.CartItem{FoodID: 7, Name: "Tea", Price: decimal.RequireFromString("20")})
	payment := kotclient.CashPayment{Tendered: decimal.RequireFromString("50")}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = submitter.Submit(cart, 4, nil, payment)
	}()

	// Second click while the first request hangs on the server.
	<-started
	_, secondErr := submitter.Submit(cart, 4, nil, payment)
	assert.ErrorIs(t, secondErr, kotclient.ErrSubmitInFlight)

	close(release)
	wg.Wait()
	assert.NoError(t, firstErr)
}
