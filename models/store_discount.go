package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreDiscount is a store-wide percentage discount applied to every product
// in the store. At most one row exists per store.
type StoreDiscount struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	StoreID    uuid.UUID       `json:"store_id" db:"store_id"`
	Percentage decimal.Decimal `json:"percentage" db:"percentage"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

func (StoreDiscount) TableName() string {
	return "store_discounts"
}

func (StoreDiscount) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS store_discounts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id UUID NOT NULL UNIQUE REFERENCES stores(id) ON DELETE CASCADE,
		percentage NUMERIC(5,2) NOT NULL DEFAULT 0.00,
		is_active BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
