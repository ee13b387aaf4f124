package dto

import "github.com/shopspring/decimal"

// DashboardSales sales totals over standard windows.
type DashboardSales struct {
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

// DashboardInventory product counts for the stock widgets.
type DashboardInventory struct {
	TotalProducts int `json:"total_products"`
	LowStock      int `json:"low_stock"`
	OutOfStock    int `json:"out_of_stock"`
}

// BestSellerDTO a top product over the last 30 days.
type BestSellerDTO struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	TotalSold    decimal.Decimal `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// DashboardStats the full dashboard payload, also pushed on the dashboard
// channel after mutating operations.
type DashboardStats struct {
	Sales       DashboardSales     `json:"sales"`
	Inventory   DashboardInventory `json:"inventory"`
	RecentSales []SaleResponse     `json:"recent_sales"`
	BestSellers []BestSellerDTO    `json:"best_sellers"`
}
