package services

import (
	"database/sql"
	"fmt"

	"mallhub-server/database"
	"mallhub-server/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService manages shopping carts and is the canonical source of the
// "amount owed": cart totals are recomputed from live rows on every call and
// never cached across mutations.
type CartService struct {
	db *database.DB
}

func NewCartService(db *database.DB) *CartService {
	return &CartService{db: db}
}

// CartLine is one cart item joined with its product, store and any active
// store discount.
type CartLine struct {
	ItemID             uuid.UUID        `json:"item_id"`
	ProductID          uuid.UUID        `json:"product_id"`
	ProductName        string           `json:"product_name"`
	Quantity           int              `json:"quantity"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	StoreID            *uuid.UUID       `json:"store_id"`
	StoreName          *string          `json:"store_name"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	IsPrizeRedemption  bool             `json:"is_prize_redemption"`
}

// EffectiveUnitPrice applies the store discount when one is active.
func (l CartLine) EffectiveUnitPrice() decimal.Decimal {
	if l.DiscountPercentage != nil && l.DiscountPercentage.IsPositive() {
		return discountedUnitPrice(l.UnitPrice, *l.DiscountPercentage)
	}
	return l.UnitPrice
}

// discountedUnitPrice runs the percentage math through float64 and converts
// the result back to a 2-decimal fixed-point value. Only the per-item step
// uses floats; accumulation stays exact.
func discountedUnitPrice(price, percentage decimal.Decimal) decimal.Decimal {
	p, _ := price.Float64()
	pct, _ := percentage.Float64()
	discounted := p * (1 - pct/100)
	return decimal.NewFromFloat(discounted).Round(2)
}

// cartLinesTotal accumulates effective price times quantity with exact
// decimal arithmetic.
func cartLinesTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// GetOrCreateActiveCart returns the user's newest cart, creating a fresh one
// if none exists or the newest is already referenced by a payment.
func (s *CartService) GetOrCreateActiveCart(userID uuid.UUID) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := s.db.QueryRow(`
		SELECT id, user_id, created_at, updated_at
		FROM shopping_carts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)

	if err == nil {
		var used bool
		if err := s.db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM payments WHERE cart_id = $1)`, cart.ID,
		).Scan(&used); err != nil {
			return nil, fmt.Errorf("failed to check cart payment: %w", err)
		}
		if !used {
			return &cart, nil
		}
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	err = s.db.QueryRow(`
		INSERT INTO shopping_carts (user_id) VALUES ($1)
		RETURNING id, user_id, created_at, updated_at`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// AddToCart adds a product to the active cart, incrementing the quantity if
// the product is already present.
func (s *CartService) AddToCart(userID, productID uuid.UUID, quantity int) (*models.ShoppingCart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	_, err = s.db.Exec(`
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		cart.ID, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	return cart, nil
}

// UpdateCartItemQuantity sets an item's quantity. Prize items are locked.
func (s *CartService) UpdateCartItemQuantity(userID, itemID uuid.UUID, quantity int) (*models.ShoppingCart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	isPrize, err := s.cartItemPrizeFlag(cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if isPrize {
		return nil, ErrPrizeItemLocked
	}

	if _, err := s.db.Exec(
		`UPDATE cart_items SET quantity = $1 WHERE id = $2 AND cart_id = $3`,
		quantity, itemID, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return cart, nil
}

// DecreaseCartItemQuantity decrements by one and removes the item at zero.
func (s *CartService) DecreaseCartItemQuantity(userID, itemID uuid.UUID) (*models.ShoppingCart, error) {
	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	isPrize, err := s.cartItemPrizeFlag(cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if isPrize {
		return nil, ErrPrizeItemLocked
	}

	var quantity int
	err = s.db.QueryRow(
		`SELECT quantity FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cart.ID).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	if quantity > 1 {
		_, err = s.db.Exec(
			`UPDATE cart_items SET quantity = quantity - 1 WHERE id = $1 AND cart_id = $2`,
			itemID, cart.ID)
	} else {
		_, err = s.db.Exec(
			`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`,
			itemID, cart.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrease cart item: %w", err)
	}
	return cart, nil
}

// RemoveFromCart deletes a single item from the active cart.
func (s *CartService) RemoveFromCart(userID, itemID uuid.UUID) (*models.ShoppingCart, error) {
	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, ErrCartItemNotFound
	}
	return cart, nil
}

// ClearCart removes every item from the active cart.
func (s *CartService) ClearCart(userID uuid.UUID) (*models.ShoppingCart, error) {
	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	return cart, nil
}

// CartLines loads the cart's items joined with product, store and active
// store discount.
func (s *CartService) CartLines(cartID uuid.UUID) ([]CartLine, error) {
	rows, err := s.db.Query(`
		SELECT ci.id, ci.quantity, ci.is_prize_redemption,
		       p.id, p.name, p.price,
		       s.id, s.name, sd.percentage
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		LEFT JOIN stores s ON p.store_id = s.id
		LEFT JOIN store_discounts sd ON sd.store_id = s.id AND sd.is_active = TRUE
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var line CartLine
		var storeID uuid.NullUUID
		var storeName sql.NullString
		var pct decimal.NullDecimal

		if err := rows.Scan(
			&line.ItemID, &line.Quantity, &line.IsPrizeRedemption,
			&line.ProductID, &line.ProductName, &line.UnitPrice,
			&storeID, &storeName, &pct,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		if storeID.Valid {
			id := storeID.UUID
			line.StoreID = &id
		}
		if storeName.Valid {
			name := storeName.String
			line.StoreName = &name
		}
		if pct.Valid {
			p := pct.Decimal
			line.DiscountPercentage = &p
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// CartTotal computes the cart's amount owed with store discounts applied.
func (s *CartService) CartTotal(cartID uuid.UUID) (decimal.Decimal, error) {
	lines, err := s.CartLines(cartID)
	if err != nil {
		return decimal.Zero, err
	}
	return cartLinesTotal(lines), nil
}

// CartBill is the line-item view returned to customers before checkout.
type CartBill struct {
	CartID uuid.UUID       `json:"cart_id"`
	Items  []CartBillItem  `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type CartBillItem struct {
	ProductName    string          `json:"product_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// Bill builds the priced view of the user's active cart.
func (s *CartService) Bill(userID uuid.UUID) (*CartBill, error) {
	cart, err := s.GetOrCreateActiveCart(userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.CartLines(cart.ID)
	if err != nil {
		return nil, err
	}

	bill := &CartBill{CartID: cart.ID, Total: cartLinesTotal(lines)}
	for _, line := range lines {
		effective := line.EffectiveUnitPrice()
		bill.Items = append(bill.Items, CartBillItem{
			ProductName:    line.ProductName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			EffectivePrice: effective,
			Subtotal:       effective.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return bill, nil
}

func (s *CartService) cartItemPrizeFlag(cartID, itemID uuid.UUID) (bool, error) {
	var isPrize bool
	err := s.db.QueryRow(
		`SELECT is_prize_redemption FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cartID).Scan(&isPrize)
	if err == sql.ErrNoRows {
		return false, ErrCartItemNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to load cart item: %w", err)
	}
	return isPrize, nil
}
