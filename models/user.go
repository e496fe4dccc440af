package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values understood by the permission middleware.
const (
	RoleCustomer     = "CUSTOMER"
	RoleStoreManager = "STORE_MANAGER"
	RoleAdmin        = "ADMIN"
	RoleDelivery     = "DELIVERY"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        *string   `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	FullName     *string   `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (User) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT UNIQUE,
		password_hash TEXT,
		full_name TEXT,
		role TEXT DEFAULT 'CUSTOMER',
		is_staff BOOLEAN DEFAULT FALSE,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
