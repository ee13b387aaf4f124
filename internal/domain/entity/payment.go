package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a customer credit payment. SaleID nil means the payment was
// unlinked and gets allocated across the customer's open utang sales
// oldest-first; each allocation spawns a derived linked Payment whose
// AllocatedFrom points back at the originating payment for audit traceability.
// The original unlinked record is kept unmodified as the canonical total.
type Payment struct {
	ID            string
	CustomerID    string
	SaleID        *string
	Amount        decimal.Decimal
	Method        string
	Notes         string
	AllocatedFrom *string
	ReceivedBy    string
	CreatedAt     time.Time
}
