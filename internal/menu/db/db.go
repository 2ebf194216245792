package db

import (
	"context"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- FOOD ITEMS ----------------

func (d *DB) CreateFoodItem(item *models.FoodItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(context.Background())
	return err
}

func (d *DB) GetFoodItemByID(id int64) (*models.FoodItem, error) {
	var item models.FoodItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListFoodItems returns the whole menu ordered for display: category, then
// sub-category, then name.
func (d *DB) ListFoodItems() ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := d.Bun.NewSelect().
		Model(&items).
		Order("category").
		Order("sub_category").
		Order("name").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) ListFoodItemsByCategory(category models.FoodCategory) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("category = ?", category).
		Order("sub_category").
		Order("name").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) UpdateFoodItem(item *models.FoodItem) error {
	_, err := d.Bun.NewUpdate().
		Model(item).
		Column("name", "description", "price", "category", "sub_category", "image", "stock_status", "available_from", "available_until", "updated_at").
		Where("id = ?", item.ID).
		Exec(context.Background())
	return err
}

func (d *DB) UpdateStockStatus(id int64, status models.StockStatus) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.FoodItem)(nil)).
		Set("stock_status = ?", status).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteFoodItem(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.FoodItem)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- SUB-CATEGORIES ----------------

func (d *DB) CreateSubCategory(sub *models.SubCategory) error {
	_, err := d.Bun.NewInsert().Model(sub).Exec(context.Background())
	return err
}

func (d *DB) ListSubCategories() ([]*models.SubCategory, error) {
	var subs []*models.SubCategory
	err := d.Bun.NewSelect().
		Model(&subs).
		Order("category").
		Order("name").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return subs, nil
}
