package services

import (
	"testing"

	"mallhub-server/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func balance(storeID uuid.UUID, points int64) storeBalance {
	return storeBalance{RowID: uuid.New(), StoreID: storeID, Points: points}
}

func planTotal(plan []deduction) int64 {
	var sum int64
	for _, d := range plan {
		sum += d.Points
	}
	return sum
}

func TestPlanDeductionHomeStoreFirst(t *testing.T) {
	home := uuid.New()
	other := uuid.New()
	balances := []storeBalance{
		balance(other, 100),
		balance(home, 40),
	}

	plan, remaining := planDeduction(balances, &home, 60)
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if len(plan) != 2 {
		t.Fatalf("plan has %d deductions, want 2", len(plan))
	}
	if plan[0].RowID != balances[1].RowID || plan[0].Points != 40 {
		t.Errorf("first deduction should drain the home store: got %d from row %s", plan[0].Points, plan[0].RowID)
	}
	if plan[1].Points != 20 {
		t.Errorf("second deduction = %d, want 20", plan[1].Points)
	}
}

func TestPlanDeductionDescendingBalances(t *testing.T) {
	a := balance(uuid.New(), 30)
	b := balance(uuid.New(), 50)
	c := balance(uuid.New(), 20)

	plan, remaining := planDeduction([]storeBalance{a, b, c}, nil, 60)
	if remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
	if len(plan) != 2 {
		t.Fatalf("plan has %d deductions, want 2", len(plan))
	}
	if plan[0].RowID != b.RowID || plan[0].Points != 50 {
		t.Errorf("largest balance should pay first: got %d", plan[0].Points)
	}
	if plan[1].RowID != a.RowID || plan[1].Points != 10 {
		t.Errorf("second deduction = %d from wrong row, want 10 from the 30-point balance", plan[1].Points)
	}
}

func TestPlanDeductionConservation(t *testing.T) {
	home := uuid.New()
	balances := []storeBalance{
		balance(home, 17),
		balance(uuid.New(), 5),
		balance(uuid.New(), 42),
		balance(uuid.New(), 9),
	}

	for _, cost := range []int64{1, 17, 22, 73} {
		plan, remaining := planDeduction(balances, &home, cost)
		if planTotal(plan)+remaining != cost {
			t.Errorf("cost %d: plan total %d + remaining %d does not conserve", cost, planTotal(plan), remaining)
		}
		for _, d := range plan {
			if d.Points <= 0 {
				t.Errorf("cost %d: non-positive deduction %d", cost, d.Points)
			}
		}
	}
}

func TestPlanDeductionInsufficient(t *testing.T) {
	plan, remaining := planDeduction([]storeBalance{balance(uuid.New(), 25)}, nil, 100)
	if remaining != 75 {
		t.Fatalf("remaining = %d, want 75", remaining)
	}
	if planTotal(plan) != 25 {
		t.Fatalf("plan total = %d, want 25", planTotal(plan))
	}
}

func TestPlanDeductionEmptyBalances(t *testing.T) {
	plan, remaining := planDeduction(nil, nil, 10)
	if len(plan) != 0 || remaining != 10 {
		t.Fatalf("got plan=%v remaining=%d, want empty plan and remaining 10", plan, remaining)
	}
}

func TestBuildPointsPreview(t *testing.T) {
	storeA := uuid.New()
	storeB := uuid.New()
	two := int64(2)
	five := int64(5)

	preview := buildPointsPreview([]storeAccrual{
		{StoreID: storeA, StoreName: "Alpha", Amount: decimal.NewFromInt(275), DiamondCount: &two},
		{StoreID: storeB, StoreName: "Beta", Amount: decimal.NewFromInt(40), DiamondCount: &five},
		{StoreID: uuid.New(), StoreName: "NoDiamonds", Amount: decimal.NewFromInt(500)},
	}, 5000)

	if preview.TotalDiamonds != 7 {
		t.Errorf("total diamonds = %d, want 7", preview.TotalDiamonds)
	}
	if preview.TotalPoints != 35000 {
		t.Errorf("total points = %d, want 35000", preview.TotalPoints)
	}
	if len(preview.Breakdown) != 2 {
		t.Fatalf("breakdown has %d stores, want 2 (diamondless store skipped)", len(preview.Breakdown))
	}
	if preview.Breakdown[0].StoreID != storeA || preview.Breakdown[0].Points != 10000 {
		t.Errorf("store A share = %+v, want 10000 points", preview.Breakdown[0])
	}
	if !preview.Breakdown[1].Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("store B amount = %s, want the undiscounted spend 40", preview.Breakdown[1].Amount)
	}
}

func TestBuildPointsPreviewZeroDiamonds(t *testing.T) {
	zero := int64(0)
	preview := buildPointsPreview([]storeAccrual{
		{StoreID: uuid.New(), Amount: decimal.NewFromInt(1000), DiamondCount: &zero},
	}, 5000)
	if preview.TotalPoints != 0 || len(preview.Breakdown) != 0 {
		t.Fatalf("zero-diamond store should earn nothing, got %+v", preview)
	}
}

func TestPrizeGrantsCode(t *testing.T) {
	pct := func(v int64) *int64 { return &v }
	tests := []struct {
		name  string
		prize models.Prize
		want  bool
	}{
		{"discount prize", models.Prize{DiscountPercentage: pct(15)}, true},
		{"zero percentage", models.Prize{DiscountPercentage: pct(0)}, false},
		{"no percentage", models.Prize{}, false},
		{"product prize", models.Prize{IsProduct: true, DiscountPercentage: pct(15)}, false},
	}
	for _, tt := range tests {
		if got := prizeGrantsCode(&tt.prize); got != tt.want {
			t.Errorf("%s: prizeGrantsCode = %v, want %v", tt.name, got, tt.want)
		}
	}
}
