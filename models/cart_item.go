package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem rows flagged is_prize_redemption are pinned at quantity 1 and
// reject ordinary quantity mutation.
type CartItem struct {
	ID                uuid.UUID `json:"id" db:"id"`
	CartID            uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID         uuid.UUID `json:"product_id" db:"product_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	IsPrizeRedemption bool      `json:"is_prize_redemption" db:"is_prize_redemption"`
	AddedAt           time.Time `json:"added_at" db:"added_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (CartItem) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS cart_items (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		cart_id UUID NOT NULL REFERENCES shopping_carts(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INT NOT NULL DEFAULT 1,
		is_prize_redemption BOOLEAN DEFAULT FALSE,
		added_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		UNIQUE(cart_id, product_id)
	);`
}
