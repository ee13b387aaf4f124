package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
)

// BestSeller is an aggregate row for the dashboard (last-30-days ranking).
type BestSeller struct {
	ProductID    string
	ProductName  string
	TotalSold    decimal.Decimal
	TotalRevenue decimal.Decimal
}

// SaleRepository is the persistence port for Sale and SaleItem.
// Create must surface a unique-constraint hit on the idempotency key as
// domain.ErrDuplicate so the engine can fall back to fetch-existing.
// ListOpenUtangByCustomer returns unpaid utang sales ordered oldest-first,
// the order the credit ledger allocates in.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	Update(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	GetByIdempotencyKey(key string) (*entity.Sale, error)
	GetItems(saleID string) ([]*entity.SaleItem, error)
	ListByShift(shiftID string) ([]*entity.Sale, error)
	ListOpenUtangByCustomer(customerID string) ([]*entity.Sale, error)
	ListRecent(limit int) ([]*entity.Sale, error)
	SumTotalByCustomer(customerID string) (decimal.Decimal, error)
	SumTotalSince(since time.Time) (decimal.Decimal, error)
	BestSellers(since time.Time, limit int) ([]BestSeller, error)
}
