package models

import (
	"time"

	"github.com/google/uuid"
)

// PrizeRedemption statuses.
const (
	RedemptionPending   = "pending"
	RedemptionApproved  = "approved"
	RedemptionRejected  = "rejected"
	RedemptionDelivered = "delivered"
)

// PrizeRedemption records one successful redemption. discount_code is set only
// for discount-type prizes (it holds the prize name, so the string is not
// unique across redemptions; one-time use is tracked per row via used).
type PrizeRedemption struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	PrizeID      uuid.UUID `json:"prize_id" db:"prize_id"`
	RedeemedAt   time.Time `json:"redeemed_at" db:"redeemed_at"`
	Status       string    `json:"status" db:"status"`
	DiscountCode *string   `json:"discount_code" db:"discount_code"`
	Used         bool      `json:"used" db:"used"`
}

func (PrizeRedemption) TableName() string {
	return "prize_redemptions"
}

func (PrizeRedemption) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS prize_redemptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		prize_id UUID NOT NULL REFERENCES prizes(id) ON DELETE CASCADE,
		redeemed_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		status TEXT DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'delivered')),
		discount_code TEXT,
		used BOOLEAN DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_prize_redemptions_code ON prize_redemptions(discount_code) WHERE discount_code IS NOT NULL;`
}
