package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tindahan/pos-api/internal/application/credit"
	"github.com/tindahan/pos-api/internal/application/purchasing"
	"github.com/tindahan/pos-api/internal/application/sales"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

// Ensure TxRunner satisfies every application-layer transaction port.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)
var _ credit.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction, handing the
// callback repositories bound to that transaction. Row locks taken via
// GetByIDForUpdate hold until commit or rollback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale runs a sale commit: sales, products and customers share one tx.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewSaleRepository(q), NewProductRepository(q), NewCustomerRepository(q))
	})
}

// RunPurchase runs a purchase receipt with its stock application.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewPurchaseRepository(q), NewProductRepository(q))
	})
}

// RunPayment runs a credit payment with its allocation loop.
func (r *TxRunner) RunPayment(ctx context.Context, fn func(
	paymentRepo repository.PaymentRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewPaymentRepository(q), NewSaleRepository(q), NewCustomerRepository(q))
	})
}
