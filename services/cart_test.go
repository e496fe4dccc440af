package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestDiscountedUnitPrice(t *testing.T) {
	tests := []struct {
		price      string
		percentage string
		want       string
	}{
		{"200.00", "15", "170"},
		{"100.00", "0", "100"},
		{"100.00", "100", "0"},
		{"19.99", "10", "17.99"},
		{"0.01", "50", "0.01"},
	}
	for _, tt := range tests {
		got := discountedUnitPrice(mustDecimal(t, tt.price), mustDecimal(t, tt.percentage))
		if !got.Equal(mustDecimal(t, tt.want)) {
			t.Errorf("discountedUnitPrice(%s, %s%%) = %s, want %s", tt.price, tt.percentage, got, tt.want)
		}
	}
}

func TestEffectiveUnitPriceNoDiscount(t *testing.T) {
	line := CartLine{UnitPrice: mustDecimal(t, "42.50")}
	if !line.EffectiveUnitPrice().Equal(line.UnitPrice) {
		t.Fatalf("line without discount should keep its unit price")
	}

	zero := decimal.Zero
	line.DiscountPercentage = &zero
	if !line.EffectiveUnitPrice().Equal(line.UnitPrice) {
		t.Fatalf("zero-percent discount should keep the unit price")
	}
}

func TestCartLinesTotal(t *testing.T) {
	pct := mustDecimal(t, "15")
	lines := []CartLine{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: mustDecimal(t, "200.00"), DiscountPercentage: &pct},
		{ProductID: uuid.New(), Quantity: 3, UnitPrice: mustDecimal(t, "10.00")},
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: mustDecimal(t, "0.00"), IsPrizeRedemption: true},
	}

	got := cartLinesTotal(lines)
	if !got.Equal(mustDecimal(t, "200")) {
		t.Fatalf("cart total = %s, want 200 (170 + 30 + 0)", got)
	}
}

func TestCartLinesTotalExactAccumulation(t *testing.T) {
	lines := make([]CartLine, 10)
	for i := range lines {
		lines[i] = CartLine{Quantity: 1, UnitPrice: mustDecimal(t, "0.10")}
	}
	if got := cartLinesTotal(lines); !got.Equal(mustDecimal(t, "1.00")) {
		t.Fatalf("ten dimes = %s, want exactly 1.00", got)
	}
}

func TestCartLinesTotalEmpty(t *testing.T) {
	if got := cartLinesTotal(nil); !got.IsZero() {
		t.Fatalf("empty cart total = %s, want 0", got)
	}
}
