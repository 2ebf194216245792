package db

import (
	"context"

	"github.com/uptrace/bun"

	"kot-system/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS ----------------

func (d *DB) CreateUser(user *models.StaffUser) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(context.Background())
	return err
}

// GetUserByIdentifier looks a user up by username or email.
func (d *DB) GetUserByIdentifier(identifier string) (*models.StaffUser, error) {
	var user models.StaffUser
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", identifier).
		WhereOr("email = ?", identifier).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) UserExists(username, email string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.StaffUser)(nil)).
		Where("username = ?", username).
		WhereOr("email = ?", email).
		Exists(context.Background())
}

// ---------------- OTPS ----------------

// UpsertOTP replaces any previous code for the email. One live code per
// address.
func (d *DB) UpsertOTP(otp *models.EmailOTP) error {
	_, err := d.Bun.NewInsert().
		Model(otp).
		On("CONFLICT (email) DO UPDATE").
		Set("otp = EXCLUDED.otp").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(context.Background())
	return err
}

func (d *DB) GetOTP(email string) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := d.Bun.NewSelect().
		Model(&otp).
		Where("email = ?", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (d *DB) DeleteOTP(email string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.EmailOTP)(nil)).
		Where("email = ?", email).
		Exec(context.Background())
	return err
}
