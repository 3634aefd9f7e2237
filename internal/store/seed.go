package store

import (
	"time"

	"github.com/shopspring/decimal"

	"tokopos/backend/internal/domain"
)

// SeedProducts is the demo catalog loaded into an empty store.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Premium Coffee Beans", Barcode: "8992761132015", PurchasePrice: money("15.50"), SalePrice: money("25.00"), Stock: 100},
		{ID: "p2", Name: "Organic Green Tea", Barcode: "8992761132022", PurchasePrice: money("8.00"), SalePrice: money("14.50"), Stock: 150},
		{ID: "p3", Name: "Artisan Sourdough Bread", Barcode: "8992761132039", PurchasePrice: money("3.50"), SalePrice: money("7.00"), Stock: 50},
		{ID: "p4", Name: "Gourmet Chocolate Bar", Barcode: "8992761132046", PurchasePrice: money("2.75"), SalePrice: money("5.50"), Stock: 200},
		{ID: "p5", Name: "Fresh Orange Juice", Barcode: "8992761132053", PurchasePrice: money("4.00"), SalePrice: money("7.50"), Stock: 80},
		{ID: "p6", Name: "Whole Milk (1L)", Barcode: "8992761132060", PurchasePrice: money("1.50"), SalePrice: money("3.00"), Stock: 120},
		{ID: "p7", Name: "Free-Range Eggs (Dozen)", Barcode: "8992761132077", PurchasePrice: money("3.00"), SalePrice: money("5.50"), Stock: 60},
	}
}

// SeedSales is historical sales data. Seed stock figures already account for
// them, so they are inserted without touching stock.
func SeedSales() []domain.Sale {
	sales := []domain.Sale{
		{
			ID:   "s1",
			Date: time.Date(2023, 10, 1, 10, 0, 0, 0, time.UTC),
			Items: []domain.SaleItem{
				{ProductID: "p1", ProductName: "Premium Coffee Beans", Quantity: 2, SalePrice: money("25.00")},
				{ProductID: "p3", ProductName: "Artisan Sourdough Bread", Quantity: 1, SalePrice: money("7.00")},
			},
		},
		{
			ID:   "s2",
			Date: time.Date(2023, 10, 2, 14, 30, 0, 0, time.UTC),
			Items: []domain.SaleItem{
				{ProductID: "p2", ProductName: "Organic Green Tea", Quantity: 1, SalePrice: money("14.50")},
				{ProductID: "p4", ProductName: "Gourmet Chocolate Bar", Quantity: 3, SalePrice: money("5.50")},
			},
		},
		{
			ID:   "s3",
			Date: time.Date(2023, 10, 2, 18, 45, 0, 0, time.UTC),
			Items: []domain.SaleItem{
				{ProductID: "p5", ProductName: "Fresh Orange Juice", Quantity: 2, SalePrice: money("7.50")},
			},
		},
		{
			ID:   "s4",
			Date: time.Date(2023, 10, 3, 9, 15, 0, 0, time.UTC),
			Items: []domain.SaleItem{
				{ProductID: "p6", ProductName: "Whole Milk (1L)", Quantity: 2, SalePrice: money("3.00")},
				{ProductID: "p7", ProductName: "Free-Range Eggs (Dozen)", Quantity: 1, SalePrice: money("5.50")},
				{ProductID: "p3", ProductName: "Artisan Sourdough Bread", Quantity: 1, SalePrice: money("7.00")},
			},
		},
		{
			ID:   "s5",
			Date: time.Date(2023, 10, 4, 11, 0, 0, 0, time.UTC),
			Items: []domain.SaleItem{
				{ProductID: "p1", ProductName: "Premium Coffee Beans", Quantity: 1, SalePrice: money("25.00")},
				{ProductID: "p4", ProductName: "Gourmet Chocolate Bar", Quantity: 2, SalePrice: money("5.50")},
			},
		},
	}
	for i := range sales {
		for j := range sales[i].Items {
			sales[i].Items[j].SaleID = sales[i].ID
		}
		sales[i].Total = domain.SumItems(sales[i].Items)
	}
	return sales
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
