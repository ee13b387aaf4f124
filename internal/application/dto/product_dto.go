package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest catalog entry creation.
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Barcode       *string          `json:"barcode,omitempty"`
	Category      string           `json:"category"`
	UnitType      string           `json:"unit_type" validate:"required,oneof=piece kg g liter ml bundle pack"`
	PricingModel  string           `json:"pricing_model" validate:"required,oneof=fixed_per_unit fixed_per_weight variable"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity decimal.Decimal  `json:"stock_quantity"`
	MinStockLevel decimal.Decimal  `json:"min_stock_level"`
}

// UpdateProductRequest partial catalog update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level,omitempty"`
}

// ProductResponse catalog entry as returned by the API. NeedsRestock is
// derived at read time.
type ProductResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Barcode       *string          `json:"barcode,omitempty"`
	Category      string           `json:"category"`
	UnitType      string           `json:"unit_type"`
	PricingModel  string           `json:"pricing_model"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	StockQuantity decimal.Decimal  `json:"stock_quantity"`
	MinStockLevel decimal.Decimal  `json:"min_stock_level"`
	NeedsRestock  bool             `json:"needs_restock"`
	ProfitMargin  *decimal.Decimal `json:"profit_margin_percent,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
