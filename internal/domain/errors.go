package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors (no external dependencies).
var (
	ErrNotFound              = errors.New("resource not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidQuantity       = errors.New("quantity below minimum sellable unit")
	ErrDuplicate             = errors.New("duplicate resource")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("access denied")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrNoActiveShift         = errors.New("no open shift for cashier")
	ErrShiftAlreadyOpen      = errors.New("cashier already has an open shift")
	ErrShiftNotOpen          = errors.New("shift is not open")
)

// StockError names the product that fell short and how much is left.
// Unwraps to ErrInsufficientStock so callers can use errors.Is.
type StockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %s", e.ProductName, e.Available.String())
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
