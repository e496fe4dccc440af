package models

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingCart becomes immutable once a payment references it; a new cart is
// created for subsequent shopping.
type ShoppingCart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

func (ShoppingCart) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS shopping_carts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_shopping_carts_user_created ON shopping_carts(user_id, created_at DESC);`
}
