package sales

import (
	"context"

	"github.com/tindahan/pos-api/internal/domain/repository"
)

// TxRunner executes fn inside one database transaction, passing repositories
// bound to that transaction. The whole sale — header, items, stock
// decrements, customer balance — commits or rolls back as a unit.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}
