package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RestaurantTable struct {
	bun.BaseModel `bun:"table:restaurant_tables"`

	TableID     int64        `bun:"table_id,pk,autoincrement" json:"table_id"`
	TableNumber int          `bun:"table_number,unique" json:"table_number"`
	TotalSeats  int          `bun:"total_seats" json:"total_seats"`
	SeatsPerRow int          `bun:"seats_per_row" json:"seats_per_row"`
	Seats       []*TableSeat `bun:"rel:has-many,join:table_id=table_id" json:"seats,omitempty"`
	CreatedAt   time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type TableSeat struct {
	bun.BaseModel `bun:"table:table_seats"`

	SeatID      int64  `bun:"seat_id,pk,autoincrement" json:"seat_id"`
	TableID     int64  `bun:"table_id" json:"table_id"`
	RowNumber   int    `bun:"row_number" json:"row_number"`
	SeatNumber  string `bun:"seat_number" json:"seat_number"`
	IsAvailable bool   `bun:"is_available" json:"is_available"`
}

type CreateTableRequest struct {
	TableNumber int `json:"table_number"`
	TotalSeats  int `json:"total_seats"`
	SeatsPerRow int `json:"seats_per_row"`
}

type SeatAvailabilityRequest struct {
	SeatNumber  string `json:"seat_number"`
	TableNumber int    `json:"table_number"`
}
