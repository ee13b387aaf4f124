package repository

import (
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
)

// CustomerRepository is the persistence port for Customer.
// GetByIDForUpdate locks the row so concurrent balance mutations serialize.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByIDForUpdate(id string) (*entity.Customer, error)
	Update(customer *entity.Customer) error
	List(limit, offset int) ([]*entity.Customer, error)
	SetTotalPurchases(id string, total decimal.Decimal) error
}
