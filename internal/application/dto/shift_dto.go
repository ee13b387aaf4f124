package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenShiftRequest opens a cashier session with a counted float.
type OpenShiftRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
	TerminalID  string          `json:"terminal_id"`
}

// CloseShiftRequest closes the session with the counted drawer.
type CloseShiftRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
}

// ShiftResponse a shift with its derived reconciliation figures.
type ShiftResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	TerminalID  string           `json:"terminal_id,omitempty"`
	Status      string           `json:"status"`
	OpeningCash decimal.Decimal  `json:"opening_cash"`
	ClosingCash *decimal.Decimal `json:"closing_cash,omitempty"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     *time.Time       `json:"end_time,omitempty"`

	// Derived, present on summary/close responses.
	SalesCount            int              `json:"sales_count"`
	TotalSales            decimal.Decimal  `json:"total_sales"`
	CashSales             decimal.Decimal  `json:"cash_sales"`
	UtangSales            decimal.Decimal  `json:"utang_sales"`
	UtangPaymentsReceived decimal.Decimal  `json:"utang_payments_received"`
	ExpectedCash          decimal.Decimal  `json:"expected_cash"`
	CashDifference        *decimal.Decimal `json:"cash_difference,omitempty"`
}
