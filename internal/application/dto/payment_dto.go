package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest a credit payment. SaleID nil means unlinked: the
// engine allocates it across the customer's open utang sales oldest-first.
type ApplyPaymentRequest struct {
	CustomerID string          `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"required,oneof=cash card mobile"`
	SaleID     *string         `json:"sale_id,omitempty"`
	Notes      string          `json:"notes"`
}

// PaymentAllocation reports one slice of an unlinked payment applied to a sale.
type PaymentAllocation struct {
	SaleID    string          `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaymentID string          `json:"payment_id"`
}

// PaymentResponse the canonical payment record plus allocation breakdown.
type PaymentResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customer_id"`
	SaleID          *string             `json:"sale_id,omitempty"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          string              `json:"method"`
	Notes           string              `json:"notes,omitempty"`
	NewBalance      decimal.Decimal     `json:"new_outstanding_balance"`
	Allocations     []PaymentAllocation `json:"allocations,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}
