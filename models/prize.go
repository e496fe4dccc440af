package models

import (
	"time"

	"github.com/google/uuid"
)

// Prize is redeemable with points. Two mutually exclusive reward shapes:
// is_product=false with a discount_percentage issues a discount code on
// redemption; is_product=true links a hidden zero-price product that gets
// added to the redeemer's cart.
type Prize struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	Description        *string    `json:"description" db:"description"`
	PointsRequired     int64      `json:"points_required" db:"points_required"`
	StoreID            *uuid.UUID `json:"store_id" db:"store_id"`
	IsProduct          bool       `json:"is_product" db:"is_product"`
	ProductID          *uuid.UUID `json:"product_id" db:"product_id"`
	ProductName        *string    `json:"product_name" db:"product_name"`
	ProductDescription *string    `json:"product_description" db:"product_description"`
	DiscountPercentage *int64     `json:"discount_percentage" db:"discount_percentage"`
	Available          bool       `json:"available" db:"available"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

func (Prize) TableName() string {
	return "prizes"
}

func (Prize) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS prizes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT,
		points_required BIGINT NOT NULL,
		store_id UUID REFERENCES stores(id) ON DELETE CASCADE,
		is_product BOOLEAN DEFAULT FALSE,
		product_id UUID REFERENCES products(id) ON DELETE SET NULL,
		product_name TEXT,
		product_description TEXT,
		discount_percentage BIGINT,
		available BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
