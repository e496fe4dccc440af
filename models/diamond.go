package models

import (
	"time"

	"github.com/google/uuid"
)

// Diamond is a loyalty allocation assigned to a store. points_value mirrors
// the global setting at write time; a global update bulk-rewrites every row.
type Diamond struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StoreID     uuid.UUID `json:"store_id" db:"store_id"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	PointsValue int64     `json:"points_value" db:"points_value"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (Diamond) TableName() string {
	return "diamonds"
}

func (Diamond) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS diamonds (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		store_id UUID NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		quantity BIGINT NOT NULL DEFAULT 1,
		points_value BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_diamonds_store_created ON diamonds(store_id, created_at);`
}
