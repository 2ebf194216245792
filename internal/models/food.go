package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type FoodCategory string

const (
	CategoryFood FoodCategory = "food"
	CategoryCafe FoodCategory = "cafe"
)

type StockStatus string

const (
	StockIn  StockStatus = "in_stock"
	StockLow StockStatus = "low_stock"
	StockOut StockStatus = "out_of_stock"
)

type FoodItem struct {
	bun.BaseModel `bun:"table:food_items"`

	ID             int64           `bun:"id,pk,autoincrement" json:"id"`
	Name           string          `bun:"name" json:"name"`
	Description    string          `bun:"description" json:"description,omitempty"`
	Price          decimal.Decimal `bun:"price" json:"price"`
	Category       FoodCategory    `bun:"category" json:"category"`
	SubCategory    string          `bun:"sub_category" json:"sub_category,omitempty"`
	Image          string          `bun:"image" json:"image,omitempty"`
	StockStatus    StockStatus     `bun:"stock_status" json:"stock_status"`
	AvailableFrom  string          `bun:"available_from" json:"available_from,omitempty"`
	AvailableUntil string          `bun:"available_until" json:"available_until,omitempty"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// AvailableAt reports whether the item's serving window covers t. Windows are
// "HH:MM" strings; an empty window means always available. Windows may cross
// midnight (e.g. 22:00-02:00).
func (f *FoodItem) AvailableAt(t time.Time) bool {
	if f.AvailableFrom == "" || f.AvailableUntil == "" {
		return true
	}
	now := t.Format("15:04")
	if f.AvailableFrom <= f.AvailableUntil {
		return now >= f.AvailableFrom && now <= f.AvailableUntil
	}
	// Window wraps past midnight.
	return now >= f.AvailableFrom || now <= f.AvailableUntil
}

// Orderable reports whether the item can go on a ticket right now.
func (f *FoodItem) Orderable(t time.Time) bool {
	return f.StockStatus != StockOut && f.AvailableAt(t)
}

type SubCategory struct {
	bun.BaseModel `bun:"table:sub_categories"`

	ID             int64        `bun:"id,pk,autoincrement" json:"id"`
	Name           string       `bun:"name" json:"name"`
	Category       FoodCategory `bun:"category" json:"category"`
	AvailableFrom  string       `bun:"available_from" json:"available_from,omitempty"`
	AvailableUntil string       `bun:"available_until" json:"available_until,omitempty"`
}

type StockUpdateRequest struct {
	StockStatus StockStatus `json:"stock_status"`
}
