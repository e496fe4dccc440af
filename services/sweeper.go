package services

import (
	"context"
	"log"
	"time"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
)

// DeliverySweeper periodically assigns couriers to completed payments that
// missed their inline assignment, for example when no courier was available
// at checkout time.
type DeliverySweeper struct {
	db       *database.DB
	delivery *DeliveryService
	interval time.Duration
}

func NewDeliverySweeper(db *database.DB, delivery *DeliveryService, interval time.Duration) *DeliverySweeper {
	return &DeliverySweeper{db: db, delivery: delivery, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *DeliverySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("delivery sweeper running every %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("delivery sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(); err != nil {
				log.Printf("delivery sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("delivery sweep assigned %d orders", n)
			}
		}
	}
}

// SweepOnce assigns every completed payment that has no delivery order yet.
// Returns how many assignments succeeded.
func (s *DeliverySweeper) SweepOnce() (int, error) {
	rows, err := s.db.Query(`
		SELECT p.id
		FROM payments p
		LEFT JOIN delivery_orders d ON d.payment_id = p.id
		WHERE p.status = $1 AND d.id IS NULL
		ORDER BY p.created_at`, models.PaymentCompleted)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var pending []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		pending = append(pending, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	assigned := 0
	for _, paymentID := range pending {
		if _, err := s.delivery.Assign(paymentID); err != nil {
			if err == ErrNoDeliveryUsers {
				// No couriers registered; the next sweep retries.
				break
			}
			log.Printf("sweep: payment %s assignment failed: %v", paymentID, err)
			continue
		}
		assigned++
	}
	return assigned, nil
}
