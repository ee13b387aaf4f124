package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentMobile = "mobile"
	PaymentUtang  = "utang" // store credit, settled later
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile, PaymentUtang:
		return true
	}
	return false
}

// Sale is an immutable sales ledger entry. TotalAmount is computed server-side
// from the line items and never trusted from the client. IdempotencyKey is a
// client-supplied token, unique when present, that makes retried submissions
// replay-safe.
type Sale struct {
	ID             string
	CustomerID     *string
	CashierID      string
	ShiftID        string
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	PaymentMethod  string
	IdempotencyKey *string
	CreatedAt      time.Time
}

// IsFullyPaid is derived, not stored.
func (s *Sale) IsFullyPaid() bool {
	return s.AmountPaid.GreaterThanOrEqual(s.TotalAmount)
}

// Outstanding is the unpaid remainder, floored at zero.
func (s *Sale) Outstanding() decimal.Decimal {
	out := s.TotalAmount.Sub(s.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// SaleItem is one sale line. UnitPrice is a snapshot taken at sale time and is
// decoupled from the product's current price. RequestedAmount records the
// customer-requested currency amount for variable-priced lines ("20 pesos of
// sugar") before the quantity was derived from it.
type SaleItem struct {
	ID              string
	SaleID          string
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	RequestedAmount *decimal.Decimal
}

// TotalPrice = quantity × unit price, exact decimal.
func (i *SaleItem) TotalPrice() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// MinSaleQuantity is the smallest sellable quantity (3-decimal stock precision).
var MinSaleQuantity = decimal.NewFromFloat(0.001)
