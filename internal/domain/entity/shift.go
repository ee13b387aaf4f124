package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift statuses.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Shift is a bounded cashier work session. A user holds at most one open
// shift at a time; every sale is bound to the cashier's open shift at
// creation and never reassigned.
type Shift struct {
	ID          string
	UserID      string
	TerminalID  string
	Status      string
	OpeningCash decimal.Decimal
	ClosingCash *decimal.Decimal // set only at close
	StartTime   time.Time
	EndTime     *time.Time
}

// ShiftSummary holds the derived reconciliation figures. Nothing here is
// stored; it is recomputed from the shift's sales and payments on demand.
// CashDifference is nil while the shift is still open.
type ShiftSummary struct {
	ShiftID               string
	SalesCount            int
	TotalSales            decimal.Decimal
	CashSales             decimal.Decimal
	UtangSales            decimal.Decimal
	UtangPaymentsReceived decimal.Decimal
	ExpectedCash          decimal.Decimal // opening cash + cash sales
	CashDifference        *decimal.Decimal
}
