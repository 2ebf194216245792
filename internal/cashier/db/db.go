package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// CreateOrder inserts the order and its items. The generated order id is
// written back onto the model and its items.
func (d *DB) CreateOrder(order *models.Order) error {
	ctx := context.Background()

	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.OrderID
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) GetOrderByID(id int64) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Items").
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns every order, newest first, items attached.
func (d *DB) ListOrders() ([]*models.Order, error) {
	var orders []*models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (d *DB) ListOrdersByStatus(status models.OrderStatus) ([]*models.Order, error) {
	var orders []*models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListPaidSince returns orders paid at or after the cutoff. Used for the
// today-collection summary.
func (d *DB) ListPaidSince(cutoff time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("status = ?", models.StatusPaid).
		Where("paid_at >= ?", cutoff).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus writes the status transition columns only.
func (d *DB) UpdateOrderStatus(order *models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(order).
		Column("status", "paid_at", "cancelled_at", "balance_amount", "received_amount").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// ApplyRefund writes the refund running-total columns only.
func (d *DB) ApplyRefund(order *models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(order).
		Column("refunded_amount", "refund_reason", "refunded_at").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// ---------------- SEATS ----------------

// OccupySeats marks the selected seats of a table unavailable. Seat rows live
// in the management schema but share the database.
func (d *DB) OccupySeats(tableNumber int, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return nil
	}
	_, err := d.Bun.NewUpdate().
		Model((*models.TableSeat)(nil)).
		Set("is_available = ?", false).
		Where("seat_number IN (?)", bun.In(seatNumbers)).
		Where("table_id IN (SELECT table_id FROM restaurant_tables WHERE table_number = ?)", tableNumber).
		Exec(context.Background())
	return err
}
