// Package pricing holds the unit-conversion and price-resolution rules
// (domain services, no persistence). All money math is exact decimal.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ConvertPurchaseLine converts a purchase-time quantity to stock pieces and a
// per-piece cost. A pack of N pieces bought at unitCost yields qty×N pieces at
// unitCost/N each; an invalid divisor fails safe to the raw unit cost.
func ConvertPurchaseLine(qty, unitCost decimal.Decimal, purchaseUnit string, unitsPerPack int64) (pieces, perPieceCost decimal.Decimal) {
	if purchaseUnit == entity.PurchaseUnitPack && unitsPerPack > 1 {
		upp := decimal.NewFromInt(unitsPerPack)
		return qty.Mul(upp), unitCost.Div(upp)
	}
	return qty, unitCost
}

// ProfitMarginPercent = (selling − cost) / cost × 100, rounded to 2 places.
// Undefined (nil) when cost is not positive or there is no selling price.
func ProfitMarginPercent(sellingPrice *decimal.Decimal, perPieceCost decimal.Decimal) *decimal.Decimal {
	if sellingPrice == nil || perPieceCost.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	m := sellingPrice.Sub(perPieceCost).Div(perPieceCost).Mul(hundred).Round(2)
	return &m
}

// Scheme is a product's pricing resolved into one value: the model plus the
// only price field meaningful to that model. It replaces ad-hoc nil checks on
// Product.Price scattered through callers.
type Scheme struct {
	Model string
	Price *decimal.Decimal
}

// SchemeOf extracts the pricing scheme from a product.
func SchemeOf(p *entity.Product) Scheme {
	return Scheme{Model: p.PricingModel, Price: p.Price}
}

// ResolveUnitPrice picks the unit price for a sale line. Variable pricing
// takes the explicitly supplied price (required); fixed models use the
// catalog price unless the caller overrides it.
func (s Scheme) ResolveUnitPrice(explicit *decimal.Decimal) (decimal.Decimal, bool) {
	if s.Model == entity.PricingVariable {
		if explicit == nil {
			return decimal.Zero, false
		}
		return *explicit, true
	}
	if explicit != nil && explicit.GreaterThan(decimal.Zero) {
		return *explicit, true
	}
	if s.Price == nil {
		return decimal.Zero, false
	}
	return *s.Price, true
}

// QuantityForAmount derives the quantity a currency amount buys at the given
// unit price ("20 pesos of sugar"). Nil — not an error — when the price is
// zero or the model is not variable.
func (s Scheme) QuantityForAmount(amount, unitPrice decimal.Decimal) *decimal.Decimal {
	if s.Model != entity.PricingVariable || unitPrice.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	q := amount.Div(unitPrice)
	return &q
}

// LineTotal = quantity × unit price, exact.
func LineTotal(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitPrice)
}
