package models

import (
	"time"

	"github.com/google/uuid"
)

// ReturnOrder statuses.
const (
	ReturnPending    = "PENDING"
	ReturnApproved   = "APPROVED"
	ReturnRejected   = "REJECTED"
	ReturnInProgress = "IN_PROGRESS"
	ReturnCompleted  = "COMPLETED"
)

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 48 * time.Hour

type ReturnOrder struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	DeliveryOrderID uuid.UUID  `json:"delivery_order_id" db:"delivery_order_id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Reason          string     `json:"reason" db:"reason"`
	Status          string     `json:"status" db:"status"`
	DeliveryUserID  *uuid.UUID `json:"delivery_user_id" db:"delivery_user_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at" db:"completed_at"`
}

func (ReturnOrder) TableName() string {
	return "return_orders"
}

func (ReturnOrder) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS return_orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		delivery_order_id UUID NOT NULL UNIQUE REFERENCES delivery_orders(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		status TEXT DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED', 'IN_PROGRESS', 'COMPLETED')),
		delivery_user_id UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		completed_at TIMESTAMP WITH TIME ZONE
	);`
}
