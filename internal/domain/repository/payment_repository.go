package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
)

// PaymentRepository is the persistence port for Payment.
// SumReceivedBetween totals one cashier's payments in a time window; shift
// reconciliation uses it for utang payments taken during that cashier's
// shift. Shifts on other terminals may overlap the same window, so the
// receiver dimension is part of the query.
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListByCustomer(customerID string, limit, offset int) ([]*entity.Payment, error)
	SumReceivedBetween(receivedBy string, from time.Time, to time.Time) (decimal.Decimal, error)
}
