package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSumItemsIsExact(t *testing.T) {
	items := []SaleItem{
		{ProductID: "p4", Quantity: 2, SalePrice: decimal.RequireFromString("5.50")},
		{ProductID: "p3", Quantity: 1, SalePrice: decimal.RequireFromString("7.00")},
	}
	if got := SumItems(items); !got.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("expected 18.00, got %s", got)
	}

	many := make([]SaleItem, 0, 10)
	for i := 0; i < 10; i++ {
		many = append(many, SaleItem{Quantity: 1, SalePrice: decimal.RequireFromString("0.10")})
	}
	if got := SumItems(many); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected ten dimes to sum to exactly 1, got %s", got)
	}
	if got := SumItems(nil); !got.IsZero() {
		t.Fatalf("expected zero for no items, got %s", got)
	}
}
