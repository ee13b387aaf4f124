package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, customer_id, cashier_id, shift_id, total_amount, amount_paid,
	payment_method, idempotency_key, created_at`

// SaleRepo SaleRepository adapter over PostgreSQL (pool or tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository builds the adapter. Pass a pool or a tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserts a sale. A replayed idempotency key hits the unique index
// and surfaces as ErrDuplicate; the engine then fetches the existing sale.
func (r *SaleRepo) Create(s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, cashier_id, shift_id, total_amount, amount_paid,
			payment_method, idempotency_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.CustomerID, s.CashierID, s.ShiftID, s.TotalAmount, s.AmountPaid,
		s.PaymentMethod, s.IdempotencyKey, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

// CreateItem inserts a sale line.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, requested_amount)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.RequestedAmount)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

// Update persists amount_paid; the allocation loop is its only caller.
func (r *SaleRepo) Update(s *entity.Sale) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE sales SET amount_paid = $2 WHERE id = $1`, s.ID, s.AmountPaid)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) scanOne(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CashierID, &s.ShiftID, &s.TotalAmount, &s.AmountPaid,
		&s.PaymentMethod, &s.IdempotencyKey, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	return &s, nil
}

// GetByID fetches a sale, nil when absent.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByIdempotencyKey fetches a sale by client key, nil when absent.
func (r *SaleRepo) GetByIdempotencyKey(key string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE idempotency_key = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, key))
}

// GetItems returns a sale's lines in insertion order.
func (r *SaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	query := `SELECT id, sale_id, product_id, quantity, unit_price, requested_amount
		FROM sale_items WHERE sale_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	var out []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.RequestedAmount); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (r *SaleRepo) scanMany(rows pgx.Rows) ([]*entity.Sale, error) {
	defer rows.Close()
	var out []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.CashierID, &s.ShiftID, &s.TotalAmount, &s.AmountPaid,
			&s.PaymentMethod, &s.IdempotencyKey, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListByShift returns every sale recorded under a shift.
func (r *SaleRepo) ListByShift(shiftID string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE shift_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list sales by shift: %w", err)
	}
	return r.scanMany(rows)
}

// ListOpenUtangByCustomer returns a customer's unpaid utang sales,
// oldest first. The allocation order of the credit ledger depends on it.
func (r *SaleRepo) ListOpenUtangByCustomer(customerID string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE customer_id = $1 AND payment_method = 'utang' AND amount_paid < total_amount
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list open utang: %w", err)
	}
	return r.scanMany(rows)
}

// ListRecent returns the latest sales, newest first.
func (r *SaleRepo) ListRecent(limit int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY created_at DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sales: %w", err)
	}
	return r.scanMany(rows)
}

// SumTotalByCustomer totals every sale a customer has made.
func (r *SaleRepo) SumTotalByCustomer(customerID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(total_amount), 0) FROM sales WHERE customer_id = $1`,
		customerID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales by customer: %w", err)
	}
	return total, nil
}

// SumTotalSince totals all sales recorded at or after the given instant.
func (r *SaleRepo) SumTotalSince(since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(total_amount), 0) FROM sales WHERE created_at >= $1`,
		since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum sales since: %w", err)
	}
	return total, nil
}

// BestSellers ranks products by quantity sold in the window.
func (r *SaleRepo) BestSellers(since time.Time, limit int) ([]repository.BestSeller, error) {
	query := `
		SELECT si.product_id, p.name,
			sum(si.quantity) AS total_sold,
			sum(si.quantity * si.unit_price) AS total_revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.created_at >= $1
		GROUP BY si.product_id, p.name
		ORDER BY total_sold DESC
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("best sellers: %w", err)
	}
	defer rows.Close()
	var out []repository.BestSeller
	for rows.Next() {
		var b repository.BestSeller
		if err := rows.Scan(&b.ProductID, &b.ProductName, &b.TotalSold, &b.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan best seller: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
