package services

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"time"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoyaltyService owns the points ledger: diamond allocations, per-store
// balances, prize redemption and purchase accrual. All multi-row balance
// updates run inside a transaction with the balance rows locked FOR UPDATE.
type LoyaltyService struct {
	db *database.DB
}

func NewLoyaltyService(db *database.DB) *LoyaltyService {
	return &LoyaltyService{db: db}
}

// GlobalSettings returns the singleton conversion-rate row, inserting the
// default on first read.
func (s *LoyaltyService) GlobalSettings() (*models.GlobalLoyaltySetting, error) {
	var setting models.GlobalLoyaltySetting
	err := s.db.QueryRow(`
		INSERT INTO global_loyalty_settings (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING id, diamond_points_value, created_at, updated_at`,
		models.GlobalLoyaltySettingID,
	).Scan(&setting.ID, &setting.DiamondPointsValue, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty settings: %w", err)
	}
	return &setting, nil
}

// UpdateGlobalSettings changes the points-per-diamond rate and rewrites every
// diamond row so existing allocations carry the new rate.
func (s *LoyaltyService) UpdateGlobalSettings(diamondPointsValue int64) (*models.GlobalLoyaltySetting, error) {
	if diamondPointsValue <= 0 {
		return nil, fmt.Errorf("diamond points value must be positive")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var setting models.GlobalLoyaltySetting
	err = tx.QueryRow(`
		INSERT INTO global_loyalty_settings (id, diamond_points_value)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET diamond_points_value = $2, updated_at = now()
		RETURNING id, diamond_points_value, created_at, updated_at`,
		models.GlobalLoyaltySettingID, diamondPointsValue,
	).Scan(&setting.ID, &setting.DiamondPointsValue, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update loyalty settings: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE diamonds SET points_value = $1, updated_at = now()`, diamondPointsValue,
	); err != nil {
		return nil, fmt.Errorf("failed to rewrite diamond rates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settings update: %w", err)
	}
	return &setting, nil
}

// CreateDiamond allocates diamonds to a store at the current global rate.
func (s *LoyaltyService) CreateDiamond(storeID uuid.UUID, quantity int64) (*models.Diamond, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	setting, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}

	var d models.Diamond
	err = s.db.QueryRow(`
		INSERT INTO diamonds (store_id, quantity, points_value)
		VALUES ($1, $2, $3)
		RETURNING id, store_id, quantity, points_value, created_at, updated_at`,
		storeID, quantity, setting.DiamondPointsValue,
	).Scan(&d.ID, &d.StoreID, &d.Quantity, &d.PointsValue, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create diamond: %w", err)
	}
	return &d, nil
}

// StoreDiamonds lists a store's diamond allocations, oldest first.
func (s *LoyaltyService) StoreDiamonds(storeID uuid.UUID) ([]models.Diamond, error) {
	rows, err := s.db.Query(`
		SELECT id, store_id, quantity, points_value, created_at, updated_at
		FROM diamonds WHERE store_id = $1 ORDER BY created_at`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diamonds: %w", err)
	}
	defer rows.Close()

	var diamonds []models.Diamond
	for rows.Next() {
		var d models.Diamond
		if err := rows.Scan(&d.ID, &d.StoreID, &d.Quantity, &d.PointsValue, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diamond: %w", err)
		}
		diamonds = append(diamonds, d)
	}
	return diamonds, rows.Err()
}

// UpdateDiamond changes an allocation's quantity and refreshes its rate from
// the current global setting.
func (s *LoyaltyService) UpdateDiamond(diamondID uuid.UUID, quantity int64) (*models.Diamond, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	setting, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}

	var d models.Diamond
	err = s.db.QueryRow(`
		UPDATE diamonds SET quantity = $1, points_value = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, store_id, quantity, points_value, created_at, updated_at`,
		quantity, setting.DiamondPointsValue, diamondID,
	).Scan(&d.ID, &d.StoreID, &d.Quantity, &d.PointsValue, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDiamondNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update diamond: %w", err)
	}
	return &d, nil
}

// DeleteDiamond removes an allocation.
func (s *LoyaltyService) DeleteDiamond(diamondID uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM diamonds WHERE id = $1`, diamondID)
	if err != nil {
		return fmt.Errorf("failed to delete diamond: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrDiamondNotFound
	}
	return nil
}

// PrizeInput carries the fields a manager or admin submits for a prize.
type PrizeInput struct {
	Name               string
	Description        *string
	PointsRequired     int64
	StoreID            *uuid.UUID
	IsProduct          bool
	ProductName        *string
	ProductDescription *string
	DiscountPercentage *int64
	Available          bool
}

// CreatePrize stores a prize. Product prizes get a hidden zero-price product
// created under the reserved Prizes category so redemptions have something to
// put in the cart.
func (s *LoyaltyService) CreatePrize(in PrizeInput) (*models.Prize, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var productID *uuid.UUID
	if in.IsProduct {
		name := in.Name
		if in.ProductName != nil && *in.ProductName != "" {
			name = *in.ProductName
		}
		id, err := s.ensurePrizeProduct(tx, name, in.ProductDescription, in.StoreID)
		if err != nil {
			return nil, err
		}
		productID = &id
	}

	var p models.Prize
	err = tx.QueryRow(`
		INSERT INTO prizes (name, description, points_required, store_id, is_product,
		                    product_id, product_name, product_description,
		                    discount_percentage, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, name, description, points_required, store_id, is_product,
		          product_id, product_name, product_description,
		          discount_percentage, available, created_at, updated_at`,
		in.Name, in.Description, in.PointsRequired, in.StoreID, in.IsProduct,
		productID, in.ProductName, in.ProductDescription,
		in.DiscountPercentage, in.Available,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.StoreID, &p.IsProduct,
		&p.ProductID, &p.ProductName, &p.ProductDescription,
		&p.DiscountPercentage, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create prize: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit prize: %w", err)
	}
	return &p, nil
}

// ensurePrizeProduct creates the hidden product behind a product prize. The
// product lives under the reserved Prizes category, priced at zero and
// inactive so it never shows in the catalog.
func (s *LoyaltyService) ensurePrizeProduct(tx *sql.Tx, name string, description *string, storeID *uuid.UUID) (uuid.UUID, error) {
	var categoryID uuid.UUID
	err := tx.QueryRow(`
		INSERT INTO categories (name) VALUES ('Prizes')
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`).Scan(&categoryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure prize category: %w", err)
	}

	var productID uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO products (name, description, price, category_id, store_id,
		                      is_prize_product, is_active)
		VALUES ($1, COALESCE($2, ''), 0, $3, $4, TRUE, FALSE)
		RETURNING id`,
		name, description, categoryID, storeID).Scan(&productID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create prize product: %w", err)
	}
	return productID, nil
}

// ListPrizes returns prizes, optionally restricted to available ones.
func (s *LoyaltyService) ListPrizes(onlyAvailable bool) ([]models.Prize, error) {
	query := `
		SELECT id, name, description, points_required, store_id, is_product,
		       product_id, product_name, product_description,
		       discount_percentage, available, created_at, updated_at
		FROM prizes`
	if onlyAvailable {
		query += ` WHERE available = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	defer rows.Close()

	var prizes []models.Prize
	for rows.Next() {
		var p models.Prize
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.StoreID,
			&p.IsProduct, &p.ProductID, &p.ProductName, &p.ProductDescription,
			&p.DiscountPercentage, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// GetPrize loads one prize.
func (s *LoyaltyService) GetPrize(prizeID uuid.UUID) (*models.Prize, error) {
	var p models.Prize
	err := s.db.QueryRow(`
		SELECT id, name, description, points_required, store_id, is_product,
		       product_id, product_name, product_description,
		       discount_percentage, available, created_at, updated_at
		FROM prizes WHERE id = $1`, prizeID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.StoreID,
		&p.IsProduct, &p.ProductID, &p.ProductName, &p.ProductDescription,
		&p.DiscountPercentage, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPrizeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prize: %w", err)
	}
	return &p, nil
}

// UpdatePrize overwrites a prize's editable fields.
func (s *LoyaltyService) UpdatePrize(prizeID uuid.UUID, in PrizeInput) (*models.Prize, error) {
	var p models.Prize
	err := s.db.QueryRow(`
		UPDATE prizes SET name = $1, description = $2, points_required = $3,
		                  discount_percentage = $4, available = $5, updated_at = now()
		WHERE id = $6
		RETURNING id, name, description, points_required, store_id, is_product,
		          product_id, product_name, product_description,
		          discount_percentage, available, created_at, updated_at`,
		in.Name, in.Description, in.PointsRequired, in.DiscountPercentage,
		in.Available, prizeID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.StoreID,
		&p.IsProduct, &p.ProductID, &p.ProductName, &p.ProductDescription,
		&p.DiscountPercentage, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPrizeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update prize: %w", err)
	}
	return &p, nil
}

// DeletePrize removes a prize.
func (s *LoyaltyService) DeletePrize(prizeID uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM prizes WHERE id = $1`, prizeID)
	if err != nil {
		return fmt.Errorf("failed to delete prize: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrPrizeNotFound
	}
	return nil
}

// StorePoints is a user's balance at one store.
type StorePoints struct {
	StoreID   uuid.UUID `json:"store_id"`
	StoreName string    `json:"store_name"`
	Points    int64     `json:"points"`
}

// UserPoints returns every per-store balance plus the aggregate.
func (s *LoyaltyService) UserPoints(userID uuid.UUID) ([]StorePoints, int64, error) {
	rows, err := s.db.Query(`
		SELECT up.store_id, st.name, up.points
		FROM user_points up
		JOIN stores st ON up.store_id = st.id
		WHERE up.user_id = $1
		ORDER BY up.points DESC`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load user points: %w", err)
	}
	defer rows.Close()

	var balances []StorePoints
	var total int64
	for rows.Next() {
		var b StorePoints
		if err := rows.Scan(&b.StoreID, &b.StoreName, &b.Points); err != nil {
			return nil, 0, fmt.Errorf("failed to scan points row: %w", err)
		}
		balances = append(balances, b)
		total += b.Points
	}
	return balances, total, rows.Err()
}

// AddPoints credits a user's balance at one store, creating the row if absent.
func (s *LoyaltyService) AddPoints(userID, storeID uuid.UUID, points int64) error {
	if points <= 0 {
		return fmt.Errorf("points must be positive")
	}
	_, err := s.db.Exec(`
		INSERT INTO user_points (user_id, store_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, store_id)
		DO UPDATE SET points = user_points.points + EXCLUDED.points, updated_at = now()`,
		userID, storeID, points)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

// storeBalance is one locked balance row inside a redemption transaction.
type storeBalance struct {
	RowID   uuid.UUID
	StoreID uuid.UUID
	Points  int64
}

// deduction is one planned subtraction against a balance row.
type deduction struct {
	RowID  uuid.UUID
	Points int64
}

// planDeduction spreads cost across balances: the prize's home store pays
// first, then remaining stores in descending balance order. Returns the plan
// and whatever cost the balances could not cover.
func planDeduction(balances []storeBalance, homeStore *uuid.UUID, cost int64) ([]deduction, int64) {
	ordered := make([]storeBalance, 0, len(balances))
	var home *storeBalance
	for i := range balances {
		if homeStore != nil && balances[i].StoreID == *homeStore {
			home = &balances[i]
			continue
		}
		ordered = append(ordered, balances[i])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Points > ordered[j].Points
	})
	if home != nil {
		ordered = append([]storeBalance{*home}, ordered...)
	}

	var plan []deduction
	remaining := cost
	for _, b := range ordered {
		if remaining <= 0 {
			break
		}
		take := b.Points
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		plan = append(plan, deduction{RowID: b.RowID, Points: take})
		remaining -= take
	}
	return plan, remaining
}

// prizeGrantsCode reports whether redeeming the prize issues a discount
// code. A zero percentage never does; it would apply as a 0.00 discount.
func prizeGrantsCode(prize *models.Prize) bool {
	return !prize.IsProduct && prize.DiscountPercentage != nil && *prize.DiscountPercentage > 0
}

// RedeemPrize deducts the prize cost from the user's balances and records the
// redemption. Balance rows are locked for the duration so concurrent
// redemptions cannot overspend.
func (s *LoyaltyService) RedeemPrize(userID, prizeID uuid.UUID) (*models.PrizeRedemption, error) {
	prize, err := s.GetPrize(prizeID)
	if err != nil {
		return nil, err
	}
	if !prize.Available {
		return nil, ErrPrizeNotFound
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, store_id, points FROM user_points
		WHERE user_id = $1 AND points > 0
		FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balances: %w", err)
	}

	var balances []storeBalance
	var total int64
	for rows.Next() {
		var b storeBalance
		if err := rows.Scan(&b.RowID, &b.StoreID, &b.Points); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
		total += b.Points
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if total < prize.PointsRequired {
		return nil, ErrInsufficientPoints
	}

	plan, remaining := planDeduction(balances, prize.StoreID, prize.PointsRequired)
	if remaining > 0 {
		return nil, ErrSettlementInconsistency
	}

	for _, d := range plan {
		if _, err := tx.Exec(
			`UPDATE user_points SET points = points - $1, updated_at = now() WHERE id = $2`,
			d.Points, d.RowID); err != nil {
			return nil, fmt.Errorf("failed to deduct points: %w", err)
		}
	}

	status := models.RedemptionPending
	var code *string
	if prizeGrantsCode(prize) {
		status = models.RedemptionApproved
		code = &prize.Name
	} else if prize.IsProduct {
		status = models.RedemptionApproved
	}

	var redemption models.PrizeRedemption
	err = tx.QueryRow(`
		INSERT INTO prize_redemptions (user_id, prize_id, status, discount_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, prize_id, redeemed_at, status, discount_code, used`,
		userID, prizeID, status, code,
	).Scan(&redemption.ID, &redemption.UserID, &redemption.PrizeID,
		&redemption.RedeemedAt, &redemption.Status, &redemption.DiscountCode, &redemption.Used)
	if err != nil {
		return nil, fmt.Errorf("failed to record redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	// Cart placement for product prizes happens after the deduction commits.
	// A failure here leaves the redemption approved; the customer can still
	// collect through the redemption record.
	if prize.IsProduct && prize.ProductID != nil {
		if err := s.addPrizeToCart(userID, *prize.ProductID); err != nil {
			log.Printf("prize %s redeemed but cart placement failed: %v", prize.ID, err)
		}
	}

	return &redemption, nil
}

func (s *LoyaltyService) addPrizeToCart(userID, productID uuid.UUID) error {
	carts := NewCartService(s.db)
	cart, err := carts.GetOrCreateActiveCart(userID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO cart_items (cart_id, product_id, quantity, is_prize_redemption)
		VALUES ($1, $2, 1, TRUE)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = 1, is_prize_redemption = TRUE`,
		cart.ID, productID)
	return err
}

// UserRedemptions lists a user's redemption history, newest first.
func (s *LoyaltyService) UserRedemptions(userID uuid.UUID) ([]models.PrizeRedemption, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, prize_id, redeemed_at, status, discount_code, used
		FROM prize_redemptions WHERE user_id = $1 ORDER BY redeemed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []models.PrizeRedemption
	for rows.Next() {
		var r models.PrizeRedemption
		if err := rows.Scan(&r.ID, &r.UserID, &r.PrizeID, &r.RedeemedAt,
			&r.Status, &r.DiscountCode, &r.Used); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}

// UpdateRedemptionStatus moves a redemption between pending, approved,
// rejected and delivered. Used by managers fulfilling product prizes.
func (s *LoyaltyService) UpdateRedemptionStatus(redemptionID uuid.UUID, status string) (*models.PrizeRedemption, error) {
	switch status {
	case models.RedemptionPending, models.RedemptionApproved,
		models.RedemptionRejected, models.RedemptionDelivered:
	default:
		return nil, ErrInvalidStatusTransition
	}

	var r models.PrizeRedemption
	err := s.db.QueryRow(`
		UPDATE prize_redemptions SET status = $1 WHERE id = $2
		RETURNING id, user_id, prize_id, redeemed_at, status, discount_code, used`,
		status, redemptionID,
	).Scan(&r.ID, &r.UserID, &r.PrizeID, &r.RedeemedAt, &r.Status, &r.DiscountCode, &r.Used)
	if err == sql.ErrNoRows {
		return nil, ErrPrizeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update redemption: %w", err)
	}
	return &r, nil
}

// storeAccrual is the per-store input to the points preview: the undiscounted
// amount spent at the store and the store's earliest diamond allocation, if
// any.
type storeAccrual struct {
	StoreID      uuid.UUID
	StoreName    string
	Amount       decimal.Decimal
	DiamondCount *int64
}

// StorePointsAccrual is one store's share of a purchase's points.
type StorePointsAccrual struct {
	StoreID      uuid.UUID       `json:"store_id"`
	StoreName    string          `json:"store_name"`
	Amount       decimal.Decimal `json:"amount"`
	DiamondCount int64           `json:"diamond_count"`
	Points       int64           `json:"points"`
}

// PointsPreview is the full accrual picture for one cart.
type PointsPreview struct {
	TotalPoints   int64                `json:"total_points"`
	TotalDiamonds int64                `json:"total_diamonds"`
	Breakdown     []StorePointsAccrual `json:"breakdown"`
}

// buildPointsPreview converts per-store accruals into points: each store
// earns its diamond count times the global rate, regardless of amount spent.
// Stores without a diamond allocation earn nothing.
func buildPointsPreview(accruals []storeAccrual, rate int64) PointsPreview {
	var preview PointsPreview
	for _, a := range accruals {
		if a.DiamondCount == nil || *a.DiamondCount <= 0 {
			continue
		}
		points := *a.DiamondCount * rate
		preview.TotalPoints += points
		preview.TotalDiamonds += *a.DiamondCount
		preview.Breakdown = append(preview.Breakdown, StorePointsAccrual{
			StoreID:      a.StoreID,
			StoreName:    a.StoreName,
			Amount:       a.Amount,
			DiamondCount: *a.DiamondCount,
			Points:       points,
		})
	}
	return preview
}

// CalculatePurchasePoints partitions a cart by store and computes each
// store's accrual from its earliest diamond allocation at the current global
// rate. Amounts in the breakdown use undiscounted prices. Storeless items and
// stores whose lookup fails are skipped rather than failing the calculation.
func (s *LoyaltyService) CalculatePurchasePoints(cartID uuid.UUID) (*PointsPreview, error) {
	setting, err := s.GlobalSettings()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT p.store_id, st.name, SUM(p.price * ci.quantity)
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		JOIN stores st ON p.store_id = st.id
		WHERE ci.cart_id = $1 AND p.store_id IS NOT NULL
		GROUP BY p.store_id, st.name`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cart spend: %w", err)
	}
	defer rows.Close()

	var accruals []storeAccrual
	for rows.Next() {
		var a storeAccrual
		if err := rows.Scan(&a.StoreID, &a.StoreName, &a.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan spend row: %w", err)
		}

		var diamondCount int64
		err := s.db.QueryRow(`
			SELECT quantity FROM diamonds
			WHERE store_id = $1
			ORDER BY created_at
			LIMIT 1`, a.StoreID).Scan(&diamondCount)
		if err == sql.ErrNoRows {
			accruals = append(accruals, a)
			continue
		}
		if err != nil {
			log.Printf("skipping points for store %s: %v", a.StoreID, err)
			continue
		}
		a.DiamondCount = &diamondCount
		accruals = append(accruals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	preview := buildPointsPreview(accruals, setting.DiamondPointsValue)
	return &preview, nil
}

// AddPointsAfterPayment credits every store share of a completed payment.
func (s *LoyaltyService) AddPointsAfterPayment(paymentID uuid.UUID) (*PointsPreview, error) {
	var userID, cartID uuid.UUID
	err := s.db.QueryRow(`
		SELECT user_id, cart_id FROM payments
		WHERE id = $1 AND status = $2`, paymentID, models.PaymentCompleted,
	).Scan(&userID, &cartID)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}

	preview, err := s.CalculatePurchasePoints(cartID)
	if err != nil {
		return nil, err
	}
	for _, share := range preview.Breakdown {
		if err := s.AddPoints(userID, share.StoreID, share.Points); err != nil {
			log.Printf("failed to credit %d points at store %s: %v", share.Points, share.StoreID, err)
		}
	}
	return preview, nil
}

// DiscountOutcome reports an applied code's effect on a cart total.
type DiscountOutcome struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	Original   decimal.Decimal `json:"original_amount"`
	Discount   decimal.Decimal `json:"discount_amount"`
	Final      decimal.Decimal `json:"final_amount"`
}

// ApplyDiscountCode resolves a code against prize redemptions first, then
// admin-issued codes, consuming the match inside a locked transaction and
// returning the discounted total for the given cart total.
func (s *LoyaltyService) ApplyDiscountCode(userID uuid.UUID, code string, cartTotal decimal.Decimal) (*DiscountOutcome, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var percentage decimal.Decimal
	var redemptionID uuid.UUID
	err = tx.QueryRow(`
		SELECT pr.id, pz.discount_percentage
		FROM prize_redemptions pr
		JOIN prizes pz ON pr.prize_id = pz.id
		WHERE pr.user_id = $1 AND pr.discount_code = $2
		  AND pr.used = FALSE AND pr.status = $3
		  AND pz.discount_percentage > 0
		ORDER BY pr.redeemed_at
		LIMIT 1
		FOR UPDATE OF pr`, userID, code, models.RedemptionApproved,
	).Scan(&redemptionID, &percentage)

	switch {
	case err == nil:
		if _, err := tx.Exec(
			`UPDATE prize_redemptions SET used = TRUE WHERE id = $1`, redemptionID,
		); err != nil {
			return nil, fmt.Errorf("failed to consume redemption code: %w", err)
		}
	case err == sql.ErrNoRows:
		var codeID uuid.UUID
		err = tx.QueryRow(`
			SELECT id, value FROM discount_codes
			WHERE code = $1 AND is_active = TRUE AND used = FALSE
			  AND (expiration_date IS NULL OR expiration_date > $2)
			FOR UPDATE`, code, time.Now(),
		).Scan(&codeID, &percentage)
		if err == sql.ErrNoRows {
			return nil, ErrInvalidDiscountCode
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up discount code: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE discount_codes SET used = TRUE, updated_at = now() WHERE id = $1`, codeID,
		); err != nil {
			return nil, fmt.Errorf("failed to consume discount code: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up redemption code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit code consumption: %w", err)
	}

	discount := cartTotal.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
	return &DiscountOutcome{
		Code:       code,
		Percentage: percentage,
		Original:   cartTotal,
		Discount:   discount,
		Final:      cartTotal.Sub(discount),
	}, nil
}

// PointsConversion reports how many diamonds a user's aggregate balance is
// worth at the current global rate.
func (s *LoyaltyService) PointsConversion(userID uuid.UUID) (int64, int64, error) {
	setting, err := s.GlobalSettings()
	if err != nil {
		return 0, 0, err
	}
	_, total, err := s.UserPoints(userID)
	if err != nil {
		return 0, 0, err
	}
	if setting.DiamondPointsValue <= 0 {
		return total, 0, nil
	}
	return total, total / setting.DiamondPointsValue, nil
}
