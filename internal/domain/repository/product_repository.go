package repository

import "github.com/tindahan/pos-api/internal/domain/entity"

// ProductRepository is the persistence port for Product.
// GetByIDForUpdate must lock the row for the duration of the enclosing
// transaction (SELECT FOR UPDATE): the stock check-and-decrement relies on it
// to serialize concurrent sales of the same product.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByIDForUpdate(id string) (*entity.Product, error)
	GetByBarcode(barcode string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	Search(query string, limit int) ([]*entity.Product, error)
	ListLowStock() ([]*entity.Product, error)
	CountActive() (int, error)
	CountLowStock() (int, error)
	CountOutOfStock() (int, error)
	SoftDelete(id string) error
}
