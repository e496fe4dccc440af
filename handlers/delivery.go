package handlers

import (
	"net/http"

	"mallhub-server/models"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CourierOrders lists the caller's assigned delivery orders.
func CourierOrders(c *gin.Context) {
	courierID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := deliverySvc.CourierOrders(courierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateDeliveryStatus advances one of the caller's delivery orders.
func UpdateDeliveryStatus(c *gin.Context) {
	courierID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathUUID(c, "id")
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

	order, err := deliverySvc.UpdateStatus(orderID, courierID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// DeliveryHistory lists the caller's delivered orders.
func DeliveryHistory(c *gin.Context) {
	courierID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := deliverySvc.CourierOrders(courierID)
	if err != nil {
		respondError(c, err)
		return
	}

	var delivered []models.DeliveryOrder
	for _, order := range orders {
		if order.Status == models.DeliveryDelivered {
			delivered = append(delivered, order)
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": delivered})
}

// CreateReturnRequest opens a return for a delivered order.
func CreateReturnRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		DeliveryOrderID uuid.UUID `json:"delivery_order_id" binding:"required"`
		Reason          string    `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	ret, err := returnSvc.Request(userID, req.DeliveryOrderID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"return": ret})
}

// CustomerReturns lists the caller's return requests.
func CustomerReturns(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	returns, err := returnSvc.UserReturns(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": returns})
}

// CourierReturns lists returns assigned to the caller.
func CourierReturns(c *gin.Context) {
	courierID, ok := currentUserID(c)
	if !ok {
		return
	}

	returns, err := returnSvc.CourierReturns(courierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": returns})
}

// UpdateReturnStatus moves a return through its lifecycle.
func UpdateReturnStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	returnID, ok := pathUUID(c, "id")
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

	ret, err := returnSvc.UpdateStatus(returnID, req.Status, actorID, currentUserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": ret})
}

// PendingReturns lists approved returns awaiting a courier.
func PendingReturns(c *gin.Context) {
	returns, err := returnSvc.PendingReturns()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returns": returns})
}

// AssignReturn hands a return to a specific courier.
func AssignReturn(c *gin.Context) {
	returnID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		DeliveryUserID uuid.UUID `json:"delivery_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	ret, err := returnSvc.AssignReturn(returnID, req.DeliveryUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return": ret})
}

// AutoAssignReturns spreads unassigned approved returns across couriers.
func AutoAssignReturns(c *gin.Context) {
	assigned, err := returnSvc.AutoAssignReturns()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Returns assigned",
		"assigned": assigned,
	})
}
