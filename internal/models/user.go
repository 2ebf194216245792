package models

import (
	"time"

	"github.com/uptrace/bun"
)

type StaffRole string

const (
	RoleAdmin   StaffRole = "admin"
	RoleCashier StaffRole = "cashier"
	RoleWaiter  StaffRole = "waiter"
)

type StaffUser struct {
	bun.BaseModel `bun:"table:staff_users"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Username     string    `bun:"username,unique" json:"username"`
	Email        string    `bun:"email,unique" json:"email"`
	PasswordHash string    `bun:"password_hash" json:"-"`
	Role         StaffRole `bun:"role" json:"role"`
	Phone        string    `bun:"phone" json:"phone,omitempty"`
	IsVerified   bool      `bun:"is_verified" json:"is_verified"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

type EmailOTP struct {
	bun.BaseModel `bun:"table:email_otps"`

	ID        int64     `bun:"id,pk,autoincrement" json:"-"`
	Email     string    `bun:"email,unique" json:"email"`
	OTP       string    `bun:"otp" json:"-"`
	ExpiresAt time.Time `bun:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"-"`
}

func (o *EmailOTP) IsValid(now time.Time) bool {
	return o.ExpiresAt.After(now)
}

type RegisterRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     StaffRole `json:"role,omitempty"`
	OTP      string    `json:"otp"`
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	User    UserInfo  `json:"user"`
	Access  string    `json:"access"`
}

type UserInfo struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     StaffRole `json:"role"`
}
