package handlers

import (
	"net/http"

	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetCart returns the user's active cart as a priced bill.
func GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bill, err := cartSvc.Bill(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_id": bill.CartID,
		"items":   bill.Items,
		"total":   bill.Total,
	})
}

// AddToCart adds a product to the active cart.
func AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := cartSvc.AddToCart(userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"cart_id": cart.ID,
	})
}

// UpdateCartItem sets an item's quantity.
func UpdateCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	if _, err := cartSvc.UpdateCartItemQuantity(userID, itemID, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// DecreaseCartItem decrements an item's quantity by one.
func DecreaseCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	if _, err := cartSvc.DecreaseCartItemQuantity(userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item decreased"})
}

// RemoveCartItem deletes one item from the cart.
func RemoveCartItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		return
	}

	if _, err := cartSvc.RemoveFromCart(userID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart empties the active cart.
func ClearCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if _, err := cartSvc.ClearCart(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
