package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	CategoryID     *uuid.UUID      `json:"category_id" db:"category_id"`
	StoreID        *uuid.UUID      `json:"store_id" db:"store_id"`
	IsPrizeProduct bool            `json:"is_prize_product" db:"is_prize_product"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	IsPreOrder     bool            `json:"is_pre_order" db:"is_pre_order"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (Product) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL,
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		store_id UUID REFERENCES stores(id) ON DELETE SET NULL,
		is_prize_product BOOLEAN DEFAULT FALSE,
		is_active BOOLEAN DEFAULT TRUE,
		is_pre_order BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_products_store_id ON products(store_id);`
}
