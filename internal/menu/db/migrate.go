package db

import (
	"context"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

// Migrate creates the menu tables when they do not exist yet. The SQL
// migration runner owns production schema changes; this covers dev and tests.
func Migrate(ctx context.Context, bunDB *bun.DB) error {
	for _, model := range []interface{}{
		(*models.FoodItem)(nil),
		(*models.SubCategory)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
