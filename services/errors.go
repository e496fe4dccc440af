package services

import "errors"

// Typed failures surfaced to the handler layer. Handlers map these onto HTTP
// status codes; anything else is treated as an internal error.
var (
	// ErrCartNotFound is returned when the referenced cart does not exist.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound is returned for a missing cart item.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrProductNotFound is returned for a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrStoreNotFound is returned for a missing store.
	ErrStoreNotFound = errors.New("store not found")
	// ErrPrizeNotFound is returned for a missing prize.
	ErrPrizeNotFound = errors.New("prize not found")
	// ErrDiamondNotFound is returned for a missing diamond allocation.
	ErrDiamondNotFound = errors.New("diamond not found")
	// ErrDiscountCodeNotFound is returned for a missing admin discount code.
	ErrDiscountCodeNotFound = errors.New("discount code not found")
	// ErrPaymentNotFound is returned for a missing payment.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrDeliveryOrderNotFound is returned when no matching delivery order
	// exists or the caller is not its assigned delivery user.
	ErrDeliveryOrderNotFound = errors.New("delivery order not found")
	// ErrReturnOrderNotFound is returned for a missing return order.
	ErrReturnOrderNotFound = errors.New("return order not found")

	// ErrInvalidQuantity rejects zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrPrizeItemLocked rejects quantity changes on prize-redemption items.
	ErrPrizeItemLocked = errors.New("cannot change quantity of a prize item")

	// ErrInsufficientPoints is returned when the user's aggregate balance
	// cannot cover a prize.
	ErrInsufficientPoints = errors.New("insufficient total points for redemption")
	// ErrSettlementInconsistency signals that the deduction loop could not
	// place all required points despite a passing aggregate check. It means
	// the row locking failed; it must never be retried silently.
	ErrSettlementInconsistency = errors.New("failed to deduct all required points despite sufficient total")

	// ErrInvalidDiscountCode covers unknown, used, inactive and expired codes.
	ErrInvalidDiscountCode = errors.New("invalid or expired discount code")

	// ErrInvalidCardDetails is returned for structurally invalid card data.
	ErrInvalidCardDetails = errors.New("invalid card details")
	// ErrEmptyCart rejects payment on a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoDeliveryUsers is returned when no user holds the DELIVERY role.
	ErrNoDeliveryUsers = errors.New("no delivery users available")
	// ErrInvalidStatusTransition rejects out-of-order state changes.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrReturnAlreadyExists rejects a second return for the same delivery.
	ErrReturnAlreadyExists = errors.New("a return request already exists for this order")
	// ErrReturnWindowExpired rejects returns after the 48-hour window.
	ErrReturnWindowExpired = errors.New("return period has expired (48 hours)")
	// ErrReturnNotAssigned rejects starting a return pickup with no courier.
	ErrReturnNotAssigned = errors.New("return must be assigned to a delivery user first")
)
