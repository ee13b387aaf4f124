package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest new customer record.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// UpdateCustomerRequest partial update; nil fields are left untouched.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty"`
}

// CustomerResponse customer with derived credit figures.
type CustomerResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone,omitempty"`
	Email              string          `json:"email,omitempty"`
	Address            string          `json:"address,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	LastUtangDate      *time.Time      `json:"last_utang_date,omitempty"`
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
	CreatedAt          time.Time       `json:"created_at"`
}
