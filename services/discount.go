package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCodeService manages the admin-issued code catalog. Code consumption
// during checkout lives in LoyaltyService.ApplyDiscountCode.
type DiscountCodeService struct {
	db    *database.DB
	email *EmailService
}

func NewDiscountCodeService(db *database.DB, email *EmailService) *DiscountCodeService {
	return &DiscountCodeService{db: db, email: email}
}

// DiscountCodeInput carries the admin-submitted fields.
type DiscountCodeInput struct {
	Code           string
	Value          decimal.Decimal
	Description    *string
	IsActive       bool
	ExpirationDate *time.Time
	NotifyEmails   []string
}

// Create stores a code and announces it by email in the background. When no
// explicit recipient list is given, every active customer is notified.
func (s *DiscountCodeService) Create(in DiscountCodeInput) (*models.DiscountCode, error) {
	if in.Code == "" {
		return nil, ErrInvalidDiscountCode
	}
	if in.Value.LessThanOrEqual(decimal.Zero) || in.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("discount value must be between 0 and 100")
	}

	var dc models.DiscountCode
	err := s.db.QueryRow(`
		INSERT INTO discount_codes (code, value, description, is_active, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, code, value, description, is_active, used, expiration_date,
		          created_at, updated_at`,
		in.Code, in.Value, in.Description, in.IsActive, in.ExpirationDate,
	).Scan(&dc.ID, &dc.Code, &dc.Value, &dc.Description, &dc.IsActive, &dc.Used,
		&dc.ExpirationDate, &dc.CreatedAt, &dc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}

	if s.email != nil {
		recipients := in.NotifyEmails
		if len(recipients) == 0 {
			recipients, err = s.activeCustomerEmails()
			if err != nil {
				log.Printf("failed to load customer emails for discount announcement: %v", err)
			}
		}
		if len(recipients) > 0 {
			go func(code string, value decimal.Decimal, to []string) {
				if err := s.email.SendDiscountCode(to, code, value); err != nil {
					log.Printf("discount code email failed: %v", err)
				}
			}(dc.Code, dc.Value, recipients)
		}
	}
	return &dc, nil
}

func (s *DiscountCodeService) activeCustomerEmails() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT email FROM users WHERE role = $1 AND is_active = TRUE`, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// List returns all codes, newest first.
func (s *DiscountCodeService) List() ([]models.DiscountCode, error) {
	return s.list(`ORDER BY created_at DESC`)
}

// ListActive returns codes still usable right now.
func (s *DiscountCodeService) ListActive() ([]models.DiscountCode, error) {
	return s.list(`WHERE is_active = TRUE AND used = FALSE
		AND (expiration_date IS NULL OR expiration_date > now())
		ORDER BY created_at DESC`)
}

func (s *DiscountCodeService) list(tail string) ([]models.DiscountCode, error) {
	rows, err := s.db.Query(`
		SELECT id, code, value, description, is_active, used, expiration_date,
		       created_at, updated_at
		FROM discount_codes ` + tail)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	defer rows.Close()

	var codes []models.DiscountCode
	for rows.Next() {
		var dc models.DiscountCode
		if err := rows.Scan(&dc.ID, &dc.Code, &dc.Value, &dc.Description, &dc.IsActive,
			&dc.Used, &dc.ExpirationDate, &dc.CreatedAt, &dc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		codes = append(codes, dc)
	}
	return codes, rows.Err()
}

// Get loads one code by id.
func (s *DiscountCodeService) Get(id uuid.UUID) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := s.db.QueryRow(`
		SELECT id, code, value, description, is_active, used, expiration_date,
		       created_at, updated_at
		FROM discount_codes WHERE id = $1`, id,
	).Scan(&dc.ID, &dc.Code, &dc.Value, &dc.Description, &dc.IsActive, &dc.Used,
		&dc.ExpirationDate, &dc.CreatedAt, &dc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDiscountCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load discount code: %w", err)
	}
	return &dc, nil
}

// Update overwrites a code's editable fields.
func (s *DiscountCodeService) Update(id uuid.UUID, in DiscountCodeInput) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := s.db.QueryRow(`
		UPDATE discount_codes
		SET value = $1, description = $2, is_active = $3, expiration_date = $4,
		    updated_at = now()
		WHERE id = $5
		RETURNING id, code, value, description, is_active, used, expiration_date,
		          created_at, updated_at`,
		in.Value, in.Description, in.IsActive, in.ExpirationDate, id,
	).Scan(&dc.ID, &dc.Code, &dc.Value, &dc.Description, &dc.IsActive, &dc.Used,
		&dc.ExpirationDate, &dc.CreatedAt, &dc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDiscountCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update discount code: %w", err)
	}
	return &dc, nil
}

// Delete removes a code.
func (s *DiscountCodeService) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discount code: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrDiscountCodeNotFound
	}
	return nil
}

// Validate checks whether a code is currently usable without consuming it.
func (s *DiscountCodeService) Validate(code string) (*models.DiscountCode, error) {
	var dc models.DiscountCode
	err := s.db.QueryRow(`
		SELECT id, code, value, description, is_active, used, expiration_date,
		       created_at, updated_at
		FROM discount_codes
		WHERE code = $1 AND is_active = TRUE AND used = FALSE
		  AND (expiration_date IS NULL OR expiration_date > now())`, code,
	).Scan(&dc.ID, &dc.Code, &dc.Value, &dc.Description, &dc.IsActive, &dc.Used,
		&dc.ExpirationDate, &dc.CreatedAt, &dc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidDiscountCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate discount code: %w", err)
	}
	return &dc, nil
}
