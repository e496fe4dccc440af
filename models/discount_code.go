package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCode is an admin-issued one-time percentage code.
type DiscountCode struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Code           string          `json:"code" db:"code"`
	Value          decimal.Decimal `json:"value" db:"value"`
	Description    *string         `json:"description" db:"description"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	Used           bool            `json:"used" db:"used"`
	ExpirationDate *time.Time      `json:"expiration_date" db:"expiration_date"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func (DiscountCode) TableName() string {
	return "discount_codes"
}

func (DiscountCode) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS discount_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code VARCHAR(50) UNIQUE NOT NULL,
		value NUMERIC(5,2) NOT NULL,
		description TEXT,
		is_active BOOLEAN DEFAULT TRUE,
		used BOOLEAN DEFAULT FALSE,
		expiration_date TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_discount_codes_code ON discount_codes(code);`
}
