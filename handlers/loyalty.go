package handlers

import (
	"net/http"

	"mallhub-server/models"
	"mallhub-server/services"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetLoyaltySettings returns the global conversion rate.
func GetLoyaltySettings(c *gin.Context) {
	setting, err := loyaltySvc.GlobalSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": setting})
}

// UpdateLoyaltySettings changes the global conversion rate.
func UpdateLoyaltySettings(c *gin.Context) {
	var req struct {
		DiamondPointsValue int64 `json:"diamond_points_value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	setting, err := loyaltySvc.UpdateGlobalSettings(req.DiamondPointsValue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": setting})
}

// CreateDiamond allocates diamonds to a store.
func CreateDiamond(c *gin.Context) {
	var req struct {
		StoreID  uuid.UUID `json:"store_id" binding:"required"`
		Quantity int64     `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	diamond, err := loyaltySvc.CreateDiamond(req.StoreID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"diamond": diamond})
}

// ListStoreDiamonds lists a store's allocations.
func ListStoreDiamonds(c *gin.Context) {
	storeID, ok := pathUUID(c, "store_id")
	if !ok {
		return
	}

	diamonds, err := loyaltySvc.StoreDiamonds(storeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diamonds": diamonds})
}

// UpdateDiamond changes an allocation's quantity.
func UpdateDiamond(c *gin.Context) {
	diamondID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int64 `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	diamond, err := loyaltySvc.UpdateDiamond(diamondID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diamond": diamond})
}

// DeleteDiamond removes an allocation.
func DeleteDiamond(c *gin.Context) {
	diamondID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := loyaltySvc.DeleteDiamond(diamondID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Diamond deleted"})
}

type prizeRequest struct {
	Name               string     `json:"name" binding:"required"`
	Description        *string    `json:"description"`
	PointsRequired     int64      `json:"points_required" binding:"required"`
	StoreID            *uuid.UUID `json:"store_id"`
	IsProduct          bool       `json:"is_product"`
	ProductName        *string    `json:"product_name"`
	ProductDescription *string    `json:"product_description"`
	DiscountPercentage *int64     `json:"discount_percentage"`
	Available          *bool      `json:"available"`
}

func (r prizeRequest) toInput() services.PrizeInput {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return services.PrizeInput{
		Name:               r.Name,
		Description:        r.Description,
		PointsRequired:     r.PointsRequired,
		StoreID:            r.StoreID,
		IsProduct:          r.IsProduct,
		ProductName:        r.ProductName,
		ProductDescription: r.ProductDescription,
		DiscountPercentage: r.DiscountPercentage,
		Available:          available,
	}
}

// CreatePrize stores a new prize.
func CreatePrize(c *gin.Context) {
	var req prizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	prize, err := loyaltySvc.CreatePrize(req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prize": prize})
}

// ListPrizes returns the prize catalog. Customers only see available prizes.
func ListPrizes(c *gin.Context) {
	role := currentUserRole(c)
	onlyAvailable := role == "" || role == models.RoleCustomer
	prizes, err := loyaltySvc.ListPrizes(onlyAvailable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prizes": prizes})
}

// GetPrize returns one prize.
func GetPrize(c *gin.Context) {
	prizeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	prize, err := loyaltySvc.GetPrize(prizeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prize": prize})
}

// UpdatePrize edits a prize.
func UpdatePrize(c *gin.Context) {
	prizeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req prizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	prize, err := loyaltySvc.UpdatePrize(prizeID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prize": prize})
}

// DeletePrize removes a prize.
func DeletePrize(c *gin.Context) {
	prizeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := loyaltySvc.DeletePrize(prizeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prize deleted"})
}

// GetUserPoints returns the caller's per-store balances.
func GetUserPoints(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balances, total, err := loyaltySvc.UserPoints(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_points": total,
		"balances":     balances,
	})
}

// RedeemPrize spends points on a prize.
func RedeemPrize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PrizeID uuid.UUID `json:"prize_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	redemption, err := loyaltySvc.RedeemPrize(userID, req.PrizeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Prize redeemed",
		"redemption": redemption,
	})
}

// ListRedemptions returns the caller's redemption history.
func ListRedemptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptions, err := loyaltySvc.UserRedemptions(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": redemptions})
}

// UpdateRedemptionStatus moves a redemption through fulfillment.
func UpdateRedemptionStatus(c *gin.Context) {
	redemptionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	redemption, err := loyaltySvc.UpdateRedemptionStatus(redemptionID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemption": redemption})
}

// CheckoutPointsPreview shows the points the active cart would earn.
func CheckoutPointsPreview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := cartSvc.GetOrCreateActiveCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	preview, err := loyaltySvc.CalculatePurchasePoints(cart.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": preview})
}

// ApplyDiscount consumes a discount code against the active cart.
func ApplyDiscount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		DiscountCode string `json:"discount_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	cart, err := cartSvc.GetOrCreateActiveCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := cartSvc.CartTotal(cart.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	outcome, err := loyaltySvc.ApplyDiscountCode(userID, req.DiscountCode, total)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount": outcome})
}

// PointsConversion reports the caller's balance in diamonds.
func PointsConversion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	points, diamonds, err := loyaltySvc.PointsConversion(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_points": points,
		"diamonds":     diamonds,
	})
}
