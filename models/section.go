package models

import (
	"time"

	"github.com/google/uuid"
)

// Section is a physical area of the mall that stores are grouped under.
type Section struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (Section) TableName() string {
	return "sections"
}

func (Section) CreateTableSQL() string {
	return `
	CREATE TABLE IF NOT EXISTS sections (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
	);`
}
