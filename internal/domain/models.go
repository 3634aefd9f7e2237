package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Barcode       string          `json:"barcode" db:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price" db:"sale_price"`
	Stock         int             `json:"stock" db:"stock"`
}

// ProductInput carries the editable product fields for both create and update.
type ProductInput struct {
	Name          string          `json:"name"`
	Barcode       string          `json:"barcode"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Stock         int             `json:"stock"`
}

// SaleItem is a line of a recorded sale. ProductName and SalePrice are copied
// from the request at sale time and are never refreshed from the catalog.
type SaleItem struct {
	SaleID      string          `json:"sale_id" db:"sale_id"`
	ProductID   string          `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price" db:"sale_price"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.SalePrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Sale struct {
	ID    string          `json:"id" db:"id"`
	Date  time.Time       `json:"date" db:"date"`
	Total decimal.Decimal `json:"total" db:"total"`
	Items []SaleItem      `json:"items"`
}

type SaleItemInput struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	SalePrice   decimal.Decimal `json:"sale_price"`
}

type RecordSaleRequest struct {
	Items []SaleItemInput `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type RecordSaleResponse struct {
	SaleID string `json:"sale_id"`
}

type DailyRevenue struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type Dashboard struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	SalesCount    int             `json:"sales_count"`
	ProductCount  int             `json:"product_count"`
	LowStockCount int             `json:"low_stock_count"`
	DailyRevenue  []DailyRevenue  `json:"daily_revenue"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// SumItems returns the sum of quantity x sale price over items.
func SumItems(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

const (
	TotalPolicyVerify    = "verify"
	TotalPolicyRecompute = "recompute"
	TotalPolicyTrust     = "trust"
)
