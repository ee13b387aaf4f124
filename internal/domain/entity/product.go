package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit types a product can be sold in.
const (
	UnitPiece  = "piece"
	UnitKg     = "kg"
	UnitGram   = "g"
	UnitLiter  = "liter"
	UnitMl     = "ml"
	UnitBundle = "bundle"
	UnitPack   = "pack"
)

// Pricing models.
const (
	PricingFixedPerUnit   = "fixed_per_unit"
	PricingFixedPerWeight = "fixed_per_weight"
	PricingVariable       = "variable"
)

// Product is a catalog entry. StockQuantity is kept to 3 decimal places so
// fractional weight/volume sales (0.250 kg of rice) work. Price and CostPrice
// are nil-able: a variable-priced product may have no base price, and cost is
// unknown until the first purchase receipt.
type Product struct {
	ID            string
	Name          string
	Barcode       *string // globally unique when present
	Category      string
	UnitType      string
	PricingModel  string
	Price         *decimal.Decimal // per stock unit; nil only for variable pricing
	CostPrice     *decimal.Decimal // per stock unit, overwritten on each receipt
	StockQuantity decimal.Decimal
	MinStockLevel decimal.Decimal
	IsActive      bool // soft-delete marker, never hard-deleted
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NeedsRestock is derived on read, never persisted.
func (p *Product) NeedsRestock() bool {
	return p.StockQuantity.LessThanOrEqual(p.MinStockLevel)
}

// OutOfStock reports a fully depleted product.
func (p *Product) OutOfStock() bool {
	return p.StockQuantity.LessThanOrEqual(decimal.Zero)
}
