package handlers

import (
	"net/http"
	"time"

	"mallhub-server/services"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type discountCodeRequest struct {
	Code           string          `json:"code"`
	Value          decimal.Decimal `json:"value" binding:"required"`
	Description    *string         `json:"description"`
	IsActive       *bool           `json:"is_active"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	NotifyEmails   []string        `json:"notify_emails"`
}

func (r discountCodeRequest) toInput() services.DiscountCodeInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.DiscountCodeInput{
		Code:           r.Code,
		Value:          r.Value,
		Description:    r.Description,
		IsActive:       active,
		ExpirationDate: r.ExpirationDate,
		NotifyEmails:   r.NotifyEmails,
	}
}

// CreateDiscountCode issues a new admin code.
func CreateDiscountCode(c *gin.Context) {
	var req discountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	code, err := discountSvc.Create(req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"discount_code": code})
}

// ListDiscountCodes returns every code.
func ListDiscountCodes(c *gin.Context) {
	codes, err := discountSvc.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount_codes": codes})
}

// ListActiveDiscountCodes returns codes still usable.
func ListActiveDiscountCodes(c *gin.Context) {
	codes, err := discountSvc.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount_codes": codes})
}

// GetDiscountCode returns one code by id.
func GetDiscountCode(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	code, err := discountSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount_code": code})
}

// UpdateDiscountCode edits a code.
func UpdateDiscountCode(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req discountCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	code, err := discountSvc.Update(id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount_code": code})
}

// DeleteDiscountCode removes a code.
func DeleteDiscountCode(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := discountSvc.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discount code deleted"})
}

// ValidateDiscountCode checks a code without consuming it.
func ValidateDiscountCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	code, err := discountSvc.Validate(req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"code":       code.Code,
		"percentage": code.Value,
	})
}
