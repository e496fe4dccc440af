package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment settles exactly one cart. payment_id is the opaque token exposed to
// clients ("PF-" + 8 hex).
type Payment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	CartID    uuid.UUID       `json:"cart_id" db:"cart_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	PaymentID string          `json:"payment_id" db:"payment_id"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (Payment) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cart_id UUID NOT NULL UNIQUE REFERENCES shopping_carts(id) ON DELETE CASCADE,
		amount NUMERIC(10,2) NOT NULL,
		payment_id VARCHAR(100) UNIQUE NOT NULL,
		status TEXT DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'failed')),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments(user_id, created_at DESC);`
}
