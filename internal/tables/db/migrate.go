package db

import (
	"context"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

// Migrate creates the table and seat tables when they do not exist yet.
func Migrate(ctx context.Context, bunDB *bun.DB) error {
	for _, model := range []interface{}{
		(*models.RestaurantTable)(nil),
		(*models.TableSeat)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
