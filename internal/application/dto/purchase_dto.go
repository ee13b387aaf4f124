package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest one received line. UnitsPerPack only matters when
// PurchaseUnit is "pack".
type PurchaseLineRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	PurchaseUnit string           `json:"purchase_unit" validate:"required,oneof=piece pack"`
	UnitsPerPack int64            `json:"units_per_pack"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
}

// CreatePurchaseRequest a supplier receipt with its lines.
type CreatePurchaseRequest struct {
	Supplier string                `json:"supplier" validate:"required,max=200"`
	Notes    string                `json:"notes"`
	Items    []PurchaseLineRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseItemResponse one received line with conversion results.
type PurchaseItemResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	PurchaseUnit  string           `json:"purchase_unit"`
	UnitsPerPack  int64            `json:"units_per_pack"`
	PiecesAdded   decimal.Decimal  `json:"pieces_added"`
	PerPieceCost  decimal.Decimal  `json:"per_piece_cost"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	ProfitMargin  *decimal.Decimal `json:"profit_margin_percent,omitempty"`
	AddedToStock  bool             `json:"added_to_stock"`
}

// PurchaseResponse a committed purchase.
type PurchaseResponse struct {
	ID        string                 `json:"id"`
	Supplier  string                 `json:"supplier"`
	TotalCost decimal.Decimal        `json:"total_cost"`
	Notes     string                 `json:"notes,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Items     []PurchaseItemResponse `json:"items"`
}
