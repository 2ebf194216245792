package db

import (
	"context"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateTable inserts the table and its generated seat grid in one
// transaction.
func (d *DB) CreateTable(table *models.RestaurantTable) error {
	ctx := context.Background()

	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(table).Exec(ctx); err != nil {
			return err
		}
		for _, seat := range table.Seats {
			seat.TableID = table.TableID
		}
		if len(table.Seats) > 0 {
			if _, err := tx.NewInsert().Model(&table.Seats).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) GetTableByID(id int64) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	err := d.Bun.NewSelect().
		Model(&table).
		Relation("Seats").
		Where("restaurant_table.table_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (d *DB) GetTableByNumber(number int) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	err := d.Bun.NewSelect().
		Model(&table).
		Relation("Seats").
		Where("restaurant_table.table_number = ?", number).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (d *DB) ListTables() ([]*models.RestaurantTable, error) {
	var tables []*models.RestaurantTable
	err := d.Bun.NewSelect().
		Model(&tables).
		Relation("Seats").
		Order("table_number").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (d *DB) DeleteTable(id int64) error {
	ctx := context.Background()

	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.TableSeat)(nil)).
			Where("table_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.RestaurantTable)(nil)).
			Where("table_id = ?", id).
			Exec(ctx)
		return err
	})
}

// SetSeatAvailability toggles one seat by its label within a table.
func (d *DB) SetSeatAvailability(tableNumber int, seatNumber string, available bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.TableSeat)(nil)).
		Set("is_available = ?", available).
		Where("seat_number = ?", seatNumber).
		Where("table_id IN (SELECT table_id FROM restaurant_tables WHERE table_number = ?)", tableNumber).
		Exec(context.Background())
	return err
}

func (d *DB) GetSeat(tableNumber int, seatNumber string) (*models.TableSeat, error) {
	var seat models.TableSeat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("seat_number = ?", seatNumber).
		Where("table_id IN (SELECT table_id FROM restaurant_tables WHERE table_number = ?)", tableNumber).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &seat, nil
}
