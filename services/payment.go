package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService settles carts. Card handling stays format-level: numbers are
// validated for shape, never stored or charged against a processor.
type PaymentService struct {
	db       *database.DB
	carts    *CartService
	loyalty  *LoyaltyService
	delivery *DeliveryService
	email    *EmailService
}

func NewPaymentService(db *database.DB, carts *CartService, loyalty *LoyaltyService, delivery *DeliveryService, email *EmailService) *PaymentService {
	return &PaymentService{db: db, carts: carts, loyalty: loyalty, delivery: delivery, email: email}
}

// CardDetails is the client-submitted payment instrument.
type CardDetails struct {
	Number      string `json:"card_number" binding:"required"`
	ExpiryMonth string `json:"expiry_month" binding:"required"`
	ExpiryYear  string `json:"expiry_year" binding:"required"`
	CVV         string `json:"cvv" binding:"required"`
}

// validateCard checks format only: a 16-digit number, month 1-12, a 2-digit
// year not in the past and a 3-digit CVV.
func validateCard(card CardDetails, now time.Time) error {
	if len(card.Number) != 16 || !allDigits(card.Number) {
		return ErrInvalidCardDetails
	}

	month, err := strconv.Atoi(card.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return ErrInvalidCardDetails
	}

	if len(card.ExpiryYear) != 2 || !allDigits(card.ExpiryYear) {
		return ErrInvalidCardDetails
	}
	year, _ := strconv.Atoi(card.ExpiryYear)
	if year < now.Year()%100 {
		return ErrInvalidCardDetails
	}

	if len(card.CVV) != 3 || !allDigits(card.CVV) {
		return ErrInvalidCardDetails
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// newPaymentToken mints the client-facing payment reference.
func newPaymentToken() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate payment token: %w", err)
	}
	return "PF-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Preview returns the amount that Process would charge right now.
func (s *PaymentService) Preview(userID uuid.UUID) (decimal.Decimal, error) {
	cart, err := s.carts.GetOrCreateActiveCart(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.carts.CartTotal(cart.ID)
}

// CheckoutResult is everything a successful Process returns: the payment,
// the loyalty points the purchase will earn, and any discount applied.
type CheckoutResult struct {
	Payment       *models.Payment  `json:"payment"`
	PointsPreview *PointsPreview   `json:"points_preview,omitempty"`
	Discount      *DiscountOutcome `json:"discount,omitempty"`
}

// checkoutOutcome shapes the settlement response. The points preview is the
// snapshot taken before the payment row was written; a failed accrual is
// logged and leaves the snapshot in place.
func checkoutOutcome(payment *models.Payment, preview *PointsPreview, discount *DiscountOutcome, accrualErr error) *CheckoutResult {
	if accrualErr != nil {
		log.Printf("payment %s: points accrual failed: %v", payment.PaymentID, accrualErr)
	}
	return &CheckoutResult{Payment: payment, PointsPreview: preview, Discount: discount}
}

// Process settles the user's active cart: validates the card, applies an
// optional discount code, records a completed payment, then best-effort
// assigns delivery and credits loyalty points. A bad discount code is fatal;
// side-effect failures after the payment row exists are logged, never
// surfaced, and the payment stands.
func (s *PaymentService) Process(userID uuid.UUID, card CardDetails, discountCode string) (*CheckoutResult, error) {
	if err := validateCard(card, time.Now()); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	var itemCount int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cart.ID,
	).Scan(&itemCount); err != nil {
		return nil, fmt.Errorf("failed to count cart items: %w", err)
	}
	if itemCount == 0 {
		return nil, ErrEmptyCart
	}

	amount, err := s.carts.CartTotal(cart.ID)
	if err != nil {
		return nil, err
	}

	var discount *DiscountOutcome
	if discountCode != "" {
		discount, err = s.loyalty.ApplyDiscountCode(userID, discountCode, amount)
		if err != nil {
			return nil, err
		}
		amount = discount.Final
	}

	// Snapshot the points the purchase will earn while the cart is still
	// loaded, so the response carries it even if the accrual below fails.
	var preview *PointsPreview
	if s.loyalty != nil {
		preview, err = s.loyalty.CalculatePurchasePoints(cart.ID)
		if err != nil {
			log.Printf("cart %s: points preview failed: %v", cart.ID, err)
		}
	}

	token, err := newPaymentToken()
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	err = s.db.QueryRow(`
		INSERT INTO payments (user_id, cart_id, amount, payment_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, cart_id, amount, payment_id, status, created_at, updated_at`,
		userID, cart.ID, amount, token, models.PaymentCompleted,
	).Scan(&payment.ID, &payment.UserID, &payment.CartID, &payment.Amount,
		&payment.PaymentID, &payment.Status, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if s.delivery != nil {
		if _, err := s.delivery.Assign(payment.ID); err != nil {
			log.Printf("payment %s: delivery assignment failed: %v", payment.PaymentID, err)
		}
	}
	var accrualErr error
	if s.loyalty != nil {
		if _, err := s.loyalty.AddPointsAfterPayment(payment.ID); err != nil {
			accrualErr = err
		}
	}
	result := checkoutOutcome(&payment, preview, discount, accrualErr)

	if s.email != nil {
		var buyerEmail string
		if err := s.db.QueryRow(
			`SELECT email FROM users WHERE id = $1`, userID,
		).Scan(&buyerEmail); err != nil {
			log.Printf("payment %s: receipt recipient lookup failed: %v", payment.PaymentID, err)
		} else {
			go func(to, token string, amount decimal.Decimal) {
				if err := s.email.SendPaymentReceipt(to, token, amount); err != nil {
					log.Printf("payment receipt email failed: %v", err)
				}
			}(buyerEmail, payment.PaymentID, payment.Amount)
		}
	}

	// The settled cart is now frozen; the next GetOrCreateActiveCart call
	// rotates to a fresh one.
	return result, nil
}

// UserPayments lists a user's payments, newest first.
func (s *PaymentService) UserPayments(userID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, cart_id, amount, payment_id, status, created_at, updated_at
		FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.CartID, &p.Amount, &p.PaymentID,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// OrderStatus is the customer-facing view of a payment's delivery progress.
type OrderStatus struct {
	PaymentToken   string          `json:"payment_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaidAt         time.Time       `json:"paid_at"`
	DeliveryStatus *string         `json:"delivery_status"`
	DeliveredAt    *time.Time      `json:"delivered_at"`
}

// LatestOrderStatus reports the user's most recent payment and its delivery
// state, if a courier has been assigned.
func (s *PaymentService) LatestOrderStatus(userID uuid.UUID) (*OrderStatus, error) {
	var status OrderStatus
	var paymentID uuid.UUID
	err := s.db.QueryRow(`
		SELECT id, payment_id, amount, created_at
		FROM payments WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 1`, userID,
	).Scan(&paymentID, &status.PaymentToken, &status.Amount, &status.PaidAt)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest payment: %w", err)
	}

	var deliveryStatus string
	var deliveredAt sql.NullTime
	err = s.db.QueryRow(`
		SELECT status, delivered_at FROM delivery_orders WHERE payment_id = $1`,
		paymentID).Scan(&deliveryStatus, &deliveredAt)
	if err == nil {
		status.DeliveryStatus = &deliveryStatus
		if deliveredAt.Valid {
			t := deliveredAt.Time
			status.DeliveredAt = &t
		}
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load delivery status: %w", err)
	}
	return &status, nil
}
