package models

import (
	"time"

	"github.com/google/uuid"
)

// UserPoints is the per-store loyalty balance of a user. Balances never go
// negative; deduction paths cap at the available amount.
type UserPoints struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	StoreID   uuid.UUID `json:"store_id" db:"store_id"`
	Points    int64     `json:"points" db:"points"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (UserPoints) TableName() string {
	return "user_points"
}

func (UserPoints) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS user_points (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		store_id UUID NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		UNIQUE(user_id, store_id)
	);`
}
