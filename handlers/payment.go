package handlers

import (
	"net/http"

	"mallhub-server/services"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
)

// PaymentPreview returns the amount a checkout would charge right now.
func PaymentPreview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	amount, err := paymentSvc.Preview(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount})
}

// ProcessPayment settles the active cart.
func ProcessPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Card         services.CardDetails `json:"card_details" binding:"required"`
		DiscountCode string               `json:"discount_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	result, err := paymentSvc.Process(userID, req.Card, req.DiscountCode)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"message":    "Payment processed successfully",
		"payment_id": result.Payment.PaymentID,
		"amount":     result.Payment.Amount,
		"status":     result.Payment.Status,
	}
	if result.PointsPreview != nil {
		resp["points"] = result.PointsPreview
	}
	if result.Discount != nil {
		resp["discount_info"] = result.Discount
	} else {
		resp["discount_info"] = "No discount applied"
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentHistory lists the caller's payments.
func PaymentHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	payments, err := paymentSvc.UserPayments(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// OrderStatus reports the caller's latest payment and its delivery state.
func OrderStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := paymentSvc.LatestOrderStatus(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": status})
}
