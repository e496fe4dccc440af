package models

import (
	"time"
)

// GlobalLoyaltySettingID pins the settings singleton to a well-known row.
const GlobalLoyaltySettingID = 1

// GlobalLoyaltySetting holds the points-per-diamond conversion rate used by
// every loyalty calculation. The row is created lazily on first read.
type GlobalLoyaltySetting struct {
	ID                 int       `json:"id" db:"id"`
	DiamondPointsValue int64     `json:"diamond_points_value" db:"diamond_points_value"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

func (GlobalLoyaltySetting) TableName() string {
	return "global_loyalty_settings"
}

func (GlobalLoyaltySetting) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS global_loyalty_settings (
		id INT PRIMARY KEY,
		diamond_points_value BIGINT NOT NULL DEFAULT 5000,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
