package services

import (
	"database/sql"
	"fmt"
	"time"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
)

// DeliveryService assigns couriers to completed payments and walks delivery
// orders through their forward-only lifecycle.
type DeliveryService struct {
	db *database.DB
}

func NewDeliveryService(db *database.DB) *DeliveryService {
	return &DeliveryService{db: db}
}

// validDeliveryTransition enforces the forward-only state machine.
func validDeliveryTransition(from, to string) bool {
	switch from {
	case models.DeliveryPending:
		return to == models.DeliveryInProgress
	case models.DeliveryInProgress:
		return to == models.DeliveryDelivered
	default:
		return false
	}
}

// Assign picks the least-loaded delivery user and creates the delivery order.
// The payment_id unique constraint makes assignment idempotent: a second call
// for the same payment returns the existing order.
func (s *DeliveryService) Assign(paymentID uuid.UUID) (*models.DeliveryOrder, error) {
	var courierID uuid.UUID
	err := s.db.QueryRow(`
		SELECT u.id
		FROM users u
		LEFT JOIN delivery_orders d
		  ON d.delivery_user_id = u.id AND d.status != $1
		WHERE u.role = $2
		GROUP BY u.id
		ORDER BY COUNT(d.id), u.created_at
		LIMIT 1`, models.DeliveryDelivered, models.RoleDelivery).Scan(&courierID)
	if err == sql.ErrNoRows {
		return nil, ErrNoDeliveryUsers
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pick delivery user: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO delivery_orders (payment_id, delivery_user_id)
		VALUES ($1, $2)
		ON CONFLICT (payment_id) DO NOTHING`, paymentID, courierID); err != nil {
		return nil, fmt.Errorf("failed to create delivery order: %w", err)
	}

	return s.byPayment(paymentID)
}

func (s *DeliveryService) byPayment(paymentID uuid.UUID) (*models.DeliveryOrder, error) {
	var d models.DeliveryOrder
	err := s.db.QueryRow(`
		SELECT id, payment_id, delivery_user_id, status, assigned_at, updated_at, delivered_at
		FROM delivery_orders WHERE payment_id = $1`, paymentID,
	).Scan(&d.ID, &d.PaymentID, &d.DeliveryUserID, &d.Status, &d.AssignedAt,
		&d.UpdatedAt, &d.DeliveredAt)
	if err == sql.ErrNoRows {
		return nil, ErrDeliveryOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery order: %w", err)
	}
	return &d, nil
}

// UpdateStatus advances a delivery order. Only the assigned courier may move
// it, and only forward.
func (s *DeliveryService) UpdateStatus(orderID, courierID uuid.UUID, status string) (*models.DeliveryOrder, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var d models.DeliveryOrder
	err = tx.QueryRow(`
		SELECT id, payment_id, delivery_user_id, status, assigned_at, updated_at, delivered_at
		FROM delivery_orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&d.ID, &d.PaymentID, &d.DeliveryUserID, &d.Status, &d.AssignedAt,
		&d.UpdatedAt, &d.DeliveredAt)
	if err == sql.ErrNoRows {
		return nil, ErrDeliveryOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery order: %w", err)
	}

	if d.DeliveryUserID != courierID {
		return nil, ErrDeliveryOrderNotFound
	}
	if !validDeliveryTransition(d.Status, status) {
		return nil, ErrInvalidStatusTransition
	}

	if status == models.DeliveryDelivered {
		err = tx.QueryRow(`
			UPDATE delivery_orders
			SET status = $1, delivered_at = now(), updated_at = now()
			WHERE id = $2
			RETURNING status, updated_at, delivered_at`,
			status, orderID).Scan(&d.Status, &d.UpdatedAt, &d.DeliveredAt)
	} else {
		err = tx.QueryRow(`
			UPDATE delivery_orders SET status = $1, updated_at = now()
			WHERE id = $2
			RETURNING status, updated_at, delivered_at`,
			status, orderID).Scan(&d.Status, &d.UpdatedAt, &d.DeliveredAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update delivery order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delivery update: %w", err)
	}
	return &d, nil
}

// CourierOrders lists a courier's open and recent delivery orders.
func (s *DeliveryService) CourierOrders(courierID uuid.UUID) ([]models.DeliveryOrder, error) {
	rows, err := s.db.Query(`
		SELECT id, payment_id, delivery_user_id, status, assigned_at, updated_at, delivered_at
		FROM delivery_orders WHERE delivery_user_id = $1
		ORDER BY assigned_at DESC`, courierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery orders: %w", err)
	}
	defer rows.Close()

	var orders []models.DeliveryOrder
	for rows.Next() {
		var d models.DeliveryOrder
		if err := rows.Scan(&d.ID, &d.PaymentID, &d.DeliveryUserID, &d.Status,
			&d.AssignedAt, &d.UpdatedAt, &d.DeliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery order: %w", err)
		}
		orders = append(orders, d)
	}
	return orders, rows.Err()
}

// ReturnService handles post-delivery returns inside the 48 hour window.
type ReturnService struct {
	db *database.DB
}

func NewReturnService(db *database.DB) *ReturnService {
	return &ReturnService{db: db}
}

// withinReturnWindow reports whether a return may still be opened.
func withinReturnWindow(deliveredAt, now time.Time) bool {
	return now.Sub(deliveredAt) <= models.ReturnWindow
}

// validReturnTransition enforces the return lifecycle. Approval and rejection
// come from staff; the assigned courier drives APPROVED through COMPLETED.
func validReturnTransition(from, to string) bool {
	switch from {
	case models.ReturnPending:
		return to == models.ReturnApproved || to == models.ReturnRejected
	case models.ReturnApproved:
		return to == models.ReturnInProgress
	case models.ReturnInProgress:
		return to == models.ReturnCompleted
	default:
		return false
	}
}

// Request opens a return for a delivered order. One return per delivery,
// only inside the window. The return is approved immediately and assigned to
// the courier who made the original delivery.
func (s *ReturnService) Request(userID, deliveryOrderID uuid.UUID, reason string) (*models.ReturnOrder, error) {
	var status string
	var deliveredAt sql.NullTime
	var buyerID, courierID uuid.UUID
	err := s.db.QueryRow(`
		SELECT d.status, d.delivered_at, d.delivery_user_id, p.user_id
		FROM delivery_orders d
		JOIN payments p ON d.payment_id = p.id
		WHERE d.id = $1`, deliveryOrderID).Scan(&status, &deliveredAt, &courierID, &buyerID)
	if err == sql.ErrNoRows {
		return nil, ErrDeliveryOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery order: %w", err)
	}

	if buyerID != userID {
		return nil, ErrDeliveryOrderNotFound
	}
	if status != models.DeliveryDelivered || !deliveredAt.Valid {
		return nil, ErrInvalidStatusTransition
	}
	if !withinReturnWindow(deliveredAt.Time, time.Now()) {
		return nil, ErrReturnWindowExpired
	}

	var r models.ReturnOrder
	err = s.db.QueryRow(`
		INSERT INTO return_orders (delivery_order_id, user_id, reason, status, delivery_user_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (delivery_order_id) DO NOTHING
		RETURNING id, delivery_order_id, user_id, reason, status, delivery_user_id,
		          created_at, updated_at, completed_at`,
		deliveryOrderID, userID, reason, models.ReturnApproved, courierID,
	).Scan(&r.ID, &r.DeliveryOrderID, &r.UserID, &r.Reason, &r.Status,
		&r.DeliveryUserID, &r.CreatedAt, &r.UpdatedAt, &r.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReturnAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create return: %w", err)
	}
	return &r, nil
}

// UpdateStatus moves a return through its lifecycle. Taking an unassigned
// return to IN_PROGRESS requires a delivery-role actor, who becomes the
// assignee. COMPLETED stamps completed_at.
func (s *ReturnService) UpdateStatus(returnID uuid.UUID, status string, actorID uuid.UUID, actorRole string) (*models.ReturnOrder, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var r models.ReturnOrder
	err = tx.QueryRow(`
		SELECT id, delivery_order_id, user_id, reason, status, delivery_user_id,
		       created_at, updated_at, completed_at
		FROM return_orders WHERE id = $1 FOR UPDATE`, returnID,
	).Scan(&r.ID, &r.DeliveryOrderID, &r.UserID, &r.Reason, &r.Status,
		&r.DeliveryUserID, &r.CreatedAt, &r.UpdatedAt, &r.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReturnOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load return: %w", err)
	}

	if !validReturnTransition(r.Status, status) {
		return nil, ErrInvalidStatusTransition
	}

	assignee := r.DeliveryUserID
	if status == models.ReturnInProgress && assignee == nil {
		if actorRole != models.RoleDelivery {
			return nil, ErrReturnNotAssigned
		}
		assignee = &actorID
	}

	if status == models.ReturnCompleted {
		err = tx.QueryRow(`
			UPDATE return_orders
			SET status = $1, delivery_user_id = $2, completed_at = now(), updated_at = now()
			WHERE id = $3
			RETURNING status, delivery_user_id, updated_at, completed_at`,
			status, assignee, returnID,
		).Scan(&r.Status, &r.DeliveryUserID, &r.UpdatedAt, &r.CompletedAt)
	} else {
		err = tx.QueryRow(`
			UPDATE return_orders
			SET status = $1, delivery_user_id = $2, updated_at = now()
			WHERE id = $3
			RETURNING status, delivery_user_id, updated_at, completed_at`,
			status, assignee, returnID,
		).Scan(&r.Status, &r.DeliveryUserID, &r.UpdatedAt, &r.CompletedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update return: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return update: %w", err)
	}
	return &r, nil
}

// AssignReturn hands an approved return to a specific delivery user.
func (s *ReturnService) AssignReturn(returnID, courierID uuid.UUID) (*models.ReturnOrder, error) {
	var role string
	err := s.db.QueryRow(`SELECT role FROM users WHERE id = $1`, courierID).Scan(&role)
	if err == sql.ErrNoRows || (err == nil && role != models.RoleDelivery) {
		return nil, ErrNoDeliveryUsers
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery user: %w", err)
	}

	var r models.ReturnOrder
	err = s.db.QueryRow(`
		UPDATE return_orders SET delivery_user_id = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING id, delivery_order_id, user_id, reason, status, delivery_user_id,
		          created_at, updated_at, completed_at`,
		courierID, returnID, models.ReturnApproved,
	).Scan(&r.ID, &r.DeliveryOrderID, &r.UserID, &r.Reason, &r.Status,
		&r.DeliveryUserID, &r.CreatedAt, &r.UpdatedAt, &r.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReturnOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to assign return: %w", err)
	}
	return &r, nil
}

// AutoAssignReturns spreads unassigned approved returns across the delivery
// pool round-robin. Returns how many were assigned.
func (s *ReturnService) AutoAssignReturns() (int, error) {
	courierRows, err := s.db.Query(
		`SELECT id FROM users WHERE role = $1 ORDER BY created_at`, models.RoleDelivery)
	if err != nil {
		return 0, fmt.Errorf("failed to list delivery users: %w", err)
	}
	var couriers []uuid.UUID
	for courierRows.Next() {
		var id uuid.UUID
		if err := courierRows.Scan(&id); err != nil {
			courierRows.Close()
			return 0, err
		}
		couriers = append(couriers, id)
	}
	courierRows.Close()
	if err := courierRows.Err(); err != nil {
		return 0, err
	}
	if len(couriers) == 0 {
		return 0, ErrNoDeliveryUsers
	}

	returns, err := s.PendingReturns()
	if err != nil {
		return 0, err
	}

	assigned := 0
	for _, r := range returns {
		courierID := couriers[assigned%len(couriers)]
		if _, err := s.db.Exec(`
			UPDATE return_orders SET delivery_user_id = $1, updated_at = now()
			WHERE id = $2 AND delivery_user_id IS NULL`, courierID, r.ID); err != nil {
			return assigned, fmt.Errorf("failed to assign return %s: %w", r.ID, err)
		}
		assigned++
	}
	return assigned, nil
}

// UserReturns lists a customer's returns, newest first.
func (s *ReturnService) UserReturns(userID uuid.UUID) ([]models.ReturnOrder, error) {
	return s.listReturns(`WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// CourierReturns lists returns assigned to a courier.
func (s *ReturnService) CourierReturns(courierID uuid.UUID) ([]models.ReturnOrder, error) {
	return s.listReturns(`WHERE delivery_user_id = $1 ORDER BY created_at DESC`, courierID)
}

// PendingReturns lists approved returns still waiting for a courier.
func (s *ReturnService) PendingReturns() ([]models.ReturnOrder, error) {
	return s.listReturns(`WHERE status = $1 AND delivery_user_id IS NULL ORDER BY created_at`,
		models.ReturnApproved)
}

func (s *ReturnService) listReturns(tail string, args ...interface{}) ([]models.ReturnOrder, error) {
	rows, err := s.db.Query(`
		SELECT id, delivery_order_id, user_id, reason, status, delivery_user_id,
		       created_at, updated_at, completed_at
		FROM return_orders `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	defer rows.Close()

	var returns []models.ReturnOrder
	for rows.Next() {
		var r models.ReturnOrder
		if err := rows.Scan(&r.ID, &r.DeliveryOrderID, &r.UserID, &r.Reason, &r.Status,
			&r.DeliveryUserID, &r.CreatedAt, &r.UpdatedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		returns = append(returns, r)
	}
	return returns, rows.Err()
}
