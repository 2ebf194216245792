package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"kot-system/internal/cashier/db"
	"kot-system/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.RestaurantTable)(nil),
		(*models.TableSeat)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(ctx); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func sampleOrder() *models.Order {
	return &models.Order{
		TableNumber:    4,
		TotalAmount:    decimal.RequireFromString("450"),
		ReceivedAmount: decimal.RequireFromString("500"),
		BalanceAmount:  decimal.RequireFromString("50"),
		RefundedAmount: decimal.Zero,
		PaymentMode:    models.PaymentCash,
		Status:         models.StatusPending,
		CreatedAt:      time.Now().UTC(),
		Items: []*models.OrderItem{
			{FoodID: 1, Name: "Paneer Tikka", Quantity: 2, Price: decimal.RequireFromString("180"), Category: models.CategoryFood},
			{FoodID: 7, Name: "Cold Coffee", Quantity: 1, Price: decimal.RequireFromString("90"), Category: models.CategoryCafe},
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	order := sampleOrder()
	err := orderDB.CreateOrder(order)
	assert.NoError(t, err)
	assert.NotZero(t, order.OrderID, "autoincrement id must be written back")

	got, err := orderDB.GetOrderByID(order.OrderID)
	assert.NoError(t, err)
	assert.Equal(t, order.OrderID, got.OrderID)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "Paneer Tikka", got.Items[0].Name)

	// Non-existent order
	got, err = orderDB.GetOrderByID(99999)
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestListOrdersByStatus(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	pending := sampleOrder()
	assert.NoError(t, orderDB.CreateOrder(pending))

	paid := sampleOrder()
	assert.NoError(t, orderDB.CreateOrder(paid))

	now := time.Now().UTC()
	paid.Status = models.StatusPaid
	paid.PaidAt = &now
	assert.NoError(t, orderDB.UpdateOrderStatus(paid))

	got, err := orderDB.ListOrdersByStatus(models.StatusPending)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, pending.OrderID, got[0].OrderID)

	all, err := orderDB.ListOrders()
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListPaidSince(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	old := sampleOrder()
	assert.NoError(t, orderDB.CreateOrder(old))
	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	old.Status = models.StatusPaid
	old.PaidAt = &yesterday
	assert.NoError(t, orderDB.UpdateOrderStatus(old))

	fresh := sampleOrder()
	assert.NoError(t, orderDB.CreateOrder(fresh))
	now := time.Now().UTC()
	fresh.Status = models.StatusPaid
	fresh.PaidAt = &now
	assert.NoError(t, orderDB.UpdateOrderStatus(fresh))

	cutoff := time.Now().UTC().Add(-1 * time.Hour)
	got, err := orderDB.ListPaidSince(cutoff)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, fresh.OrderID, got[0].OrderID)
}

func TestApplyRefund(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	order := sampleOrder()
	assert.NoError(t, orderDB.CreateOrder(order))

	now := time.Now().UTC()
	order.RefundedAmount = decimal.RequireFromString("100")
	order.RefundReason = "Cold dish"
	order.RefundedAt = &now
	assert.NoError(t, orderDB.ApplyRefund(order))

	got, err := orderDB.GetOrderByID(order.OrderID)
	assert.NoError(t, err)
	assert.True(t, got.RefundedAmount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, "Cold dish", got.RefundReason)
	assert.Equal(t, models.RefundPartial, got.RefundState())
}

func TestOccupySeats(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ctx := context.Background()
	table := &models.RestaurantTable{TableNumber: 4, TotalSeats: 4, SeatsPerRow: 2}
	_, err := bunDB.NewInsert().Model(table).Exec(ctx)
	assert.NoError(t, err)

	seats := []*models.TableSeat{
		{TableID: table.TableID, RowNumber: 1, SeatNumber: "A1", IsAvailable: true},
		{TableID: table.TableID, RowNumber: 1, SeatNumber: "A2", IsAvailable: true},
		{TableID: table.TableID, RowNumber: 2, SeatNumber: "B1", IsAvailable: true},
	}
	_, err = bunDB.NewInsert().Model(&seats).Exec(ctx)
	assert.NoError(t, err)

	assert.NoError(t, orderDB.OccupySeats(4, []string{"A1", "B1"}))

	var got []*models.TableSeat
	err = bunDB.NewSelect().Model(&got).Order("seat_id").Scan(ctx)
	assert.NoError(t, err)
	assert.False(t, got[0].IsAvailable)
	assert.True(t, got[1].IsAvailable)
	assert.False(t, got[2].IsAvailable)
}
