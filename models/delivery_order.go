package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryOrder statuses; transitions are strictly forward-only.
const (
	DeliveryPending    = "PENDING"
	DeliveryInProgress = "IN_PROGRESS"
	DeliveryDelivered  = "DELIVERED"
)

type DeliveryOrder struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	PaymentID      uuid.UUID  `json:"payment_id" db:"payment_id"`
	DeliveryUserID uuid.UUID  `json:"delivery_user_id" db:"delivery_user_id"`
	Status         string     `json:"status" db:"status"`
	AssignedAt     time.Time  `json:"assigned_at" db:"assigned_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeliveredAt    *time.Time `json:"delivered_at" db:"delivered_at"`
}

func (DeliveryOrder) TableName() string {
	return "delivery_orders"
}

func (DeliveryOrder) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS delivery_orders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		payment_id UUID NOT NULL UNIQUE REFERENCES payments(id) ON DELETE CASCADE,
		delivery_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'IN_PROGRESS', 'DELIVERED')),
		assigned_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		delivered_at TIMESTAMP WITH TIME ZONE
	);`
}
