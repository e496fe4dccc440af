package services

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"mallhub-server/models"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func validTestCard() CardDetails {
	return CardDetails{
		Number:      "4111111111111111",
		ExpiryMonth: "09",
		ExpiryYear:  "28",
		CVV:         "123",
	}
}

func TestValidateCardAccepts(t *testing.T) {
	cards := []CardDetails{
		validTestCard(),
		{Number: "4111111111111111", ExpiryMonth: "1", ExpiryYear: "26", CVV: "000"},
		{Number: "5555555555554444", ExpiryMonth: "12", ExpiryYear: "99", CVV: "999"},
	}
	for i, card := range cards {
		if err := validateCard(card, testNow); err != nil {
			t.Errorf("card %d should validate, got %v", i, err)
		}
	}
}

func TestValidateCardRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CardDetails)
	}{
		{"short number", func(c *CardDetails) { c.Number = "411111111111111" }},
		{"letters in number", func(c *CardDetails) { c.Number = "41111111111111ab" }},
		{"spaces in number", func(c *CardDetails) { c.Number = "4111 1111 1111 1111" }},
		{"month zero", func(c *CardDetails) { c.ExpiryMonth = "0" }},
		{"month thirteen", func(c *CardDetails) { c.ExpiryMonth = "13" }},
		{"month not numeric", func(c *CardDetails) { c.ExpiryMonth = "ab" }},
		{"year in the past", func(c *CardDetails) { c.ExpiryYear = "25" }},
		{"four digit year", func(c *CardDetails) { c.ExpiryYear = "2028" }},
		{"short cvv", func(c *CardDetails) { c.CVV = "12" }},
		{"long cvv", func(c *CardDetails) { c.CVV = "1234" }},
		{"cvv letters", func(c *CardDetails) { c.CVV = "12a" }},
	}
	for _, tt := range tests {
		card := validTestCard()
		tt.mutate(&card)
		if err := validateCard(card, testNow); err != ErrInvalidCardDetails {
			t.Errorf("%s: got %v, want ErrInvalidCardDetails", tt.name, err)
		}
	}
}

func TestValidateCardCurrentYear(t *testing.T) {
	card := validTestCard()
	card.ExpiryYear = "26"
	if err := validateCard(card, testNow); err != nil {
		t.Fatalf("current-year card should validate, got %v", err)
	}
}

func TestCheckoutOutcomeKeepsPreviewOnAccrualFailure(t *testing.T) {
	payment := &models.Payment{PaymentID: "PF-0A1B2C3D"}
	preview := &PointsPreview{TotalPoints: 10000, TotalDiamonds: 2}

	got := checkoutOutcome(payment, preview, nil, errors.New("user_points upsert failed"))
	if got.PointsPreview == nil {
		t.Fatal("accrual failure must not drop the points preview from the response")
	}
	if got.PointsPreview.TotalPoints != 10000 || got.PointsPreview.TotalDiamonds != 2 {
		t.Fatalf("preview changed: got %+v", got.PointsPreview)
	}
	if got.Payment != payment {
		t.Fatal("payment missing from checkout outcome")
	}
}

func TestCheckoutOutcomeCarriesDiscount(t *testing.T) {
	payment := &models.Payment{PaymentID: "PF-4E5F6071"}
	discount := &DiscountOutcome{Code: "SUMMER15"}

	got := checkoutOutcome(payment, nil, discount, nil)
	if got.Discount == nil || got.Discount.Code != "SUMMER15" {
		t.Fatalf("discount missing from checkout outcome: %+v", got.Discount)
	}
}

func TestNewPaymentToken(t *testing.T) {
	shape := regexp.MustCompile(`^PF-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := newPaymentToken()
		if err != nil {
			t.Fatalf("token generation failed: %v", err)
		}
		if !shape.MatchString(token) {
			t.Fatalf("token %q does not match PF-XXXXXXXX", token)
		}
		if seen[token] {
			t.Fatalf("token %q repeated within 50 draws", token)
		}
		seen[token] = true
	}
}
