package handlers

import (
	"net/http"

	"mallhub-server/database"
	"mallhub-server/services"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DB is the shared database handle used by all handlers
var DB *database.DB

// Service singletons wired by InitializeHandlers.
var (
	cartSvc     *services.CartService
	loyaltySvc  *services.LoyaltyService
	discountSvc *services.DiscountCodeService
	paymentSvc  *services.PaymentService
	deliverySvc *services.DeliveryService
	returnSvc   *services.ReturnService
)

// InitializeHandlers sets up the database connection and services for handlers
func InitializeHandlers(database *database.DB) {
	DB = database

	email := services.NewEmailService()
	cartSvc = services.NewCartService(database)
	loyaltySvc = services.NewLoyaltyService(database)
	discountSvc = services.NewDiscountCodeService(database, email)
	deliverySvc = services.NewDeliveryService(database)
	returnSvc = services.NewReturnService(database)
	paymentSvc = services.NewPaymentService(database, cartSvc, loyaltySvc, deliverySvc, email)
}

// currentUserID pulls the authenticated user out of the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("User ID not found in context"))
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid user ID format"))
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a :param path segment as a UUID.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates service sentinel errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch err {
	case services.ErrCartNotFound, services.ErrCartItemNotFound,
		services.ErrProductNotFound, services.ErrStoreNotFound,
		services.ErrPrizeNotFound, services.ErrDiamondNotFound,
		services.ErrDiscountCodeNotFound, services.ErrPaymentNotFound,
		services.ErrDeliveryOrderNotFound, services.ErrReturnOrderNotFound:
		status = http.StatusNotFound
	case services.ErrInvalidQuantity, services.ErrInvalidDiscountCode,
		services.ErrEmptyCart, services.ErrInvalidStatusTransition,
		services.ErrReturnWindowExpired, services.ErrReturnNotAssigned:
		status = http.StatusBadRequest
	case services.ErrInvalidCardDetails:
		status = http.StatusPaymentRequired
	case services.ErrPrizeItemLocked:
		status = http.StatusForbidden
	case services.ErrInsufficientPoints:
		status = http.StatusBadRequest
	case services.ErrReturnAlreadyExists:
		status = http.StatusConflict
	case services.ErrNoDeliveryUsers:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, utils.ErrorResponse(err.Error()))
}
