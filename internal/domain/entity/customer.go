package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a store customer, possibly carrying utang (store credit).
// OutstandingBalance never goes below zero: overpayments are absorbed.
// TotalPurchases is derived (sum of the customer's sale totals) and recomputed
// after every sale commit.
type Customer struct {
	ID                 string
	Name               string
	Phone              string
	Email              string
	Address            string
	OutstandingBalance decimal.Decimal
	LastUtangDate      *time.Time
	TotalPurchases     decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
