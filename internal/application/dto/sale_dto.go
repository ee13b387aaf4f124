package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest one line of a sale submission. For variable-priced products
// UnitPrice is required; Quantity may be omitted when RequestedAmount is
// given, in which case the engine derives quantity = amount / unit price.
type SaleLineRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`
}

// CreateSaleRequest a multi-line sale submission. IdempotencyKey makes
// retried submissions replay-safe.
type CreateSaleRequest struct {
	CustomerID     *string           `json:"customer_id,omitempty"`
	PaymentMethod  string            `json:"payment_method" validate:"required,oneof=cash card mobile utang"`
	Items          []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey *string           `json:"idempotency_key,omitempty"`
}

// SaleItemResponse one committed sale line.
type SaleItemResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	ProductName     string           `json:"product_name,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`
}

// SaleResponse a committed sale with its lines.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	ShiftID       string             `json:"shift_id"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	IsFullyPaid   bool               `json:"is_fully_paid"`
	PaymentMethod string             `json:"payment_method"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
}
