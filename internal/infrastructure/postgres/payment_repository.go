package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo PaymentRepository adapter over PostgreSQL (pool or tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository builds the adapter. Pass a pool or a tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create inserts a payment record.
func (r *PaymentRepo) Create(p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, customer_id, sale_id, amount, method, notes,
			allocated_from, received_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.CustomerID, p.SaleID, p.Amount, p.Method, p.Notes,
		p.AllocatedFrom, p.ReceivedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's payments, newest first.
func (r *PaymentRepo) ListByCustomer(customerID string, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT id, customer_id, sale_id, amount, method, notes, allocated_from, received_by, created_at
		FROM payments WHERE customer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var out []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.SaleID, &p.Amount, &p.Method, &p.Notes,
			&p.AllocatedFrom, &p.ReceivedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// SumReceivedBetween totals canonical payments taken by one cashier in
// [from, to). Allocation children carry allocated_from and are excluded so a
// split payment is not counted twice; filtering on received_by keeps
// concurrently open shifts from claiming each other's payments.
func (r *PaymentRepo) SumReceivedBetween(receivedBy string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(sum(amount), 0) FROM payments
		 WHERE allocated_from IS NULL AND received_by = $1
		   AND created_at >= $2 AND created_at < $3`,
		receivedBy, from, to).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}
