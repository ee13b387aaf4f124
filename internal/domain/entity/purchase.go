package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase-time units. A pack is a bulk unit convertible to N sellable pieces.
const (
	PurchaseUnitPiece = "piece"
	PurchaseUnitPack  = "pack"
)

// Purchase is a supplier receipt header. TotalCost is computed server-side
// from the line items.
type Purchase struct {
	ID        string
	Supplier  string
	TotalCost decimal.Decimal
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

// PurchaseItem is one received line. AddedToStock guards against applying the
// same line to stock twice when a save is retried: stock is mutated at most
// once per line, then the flag is set in the same transaction.
type PurchaseItem struct {
	ID           string
	PurchaseID   string
	ProductID    string
	Quantity     decimal.Decimal // in PurchaseUnit units
	UnitCost     decimal.Decimal // per PurchaseUnit
	PurchaseUnit string
	UnitsPerPack int64
	SellingPrice *decimal.Decimal // optional new retail price
	AddedToStock bool
}

// LineCost = quantity × unit cost (in purchase units, before pack conversion).
func (i *PurchaseItem) LineCost() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}
