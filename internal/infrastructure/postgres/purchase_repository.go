package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

const purchaseItemColumns = `id, purchase_id, product_id, quantity, unit_cost,
	purchase_unit, units_per_pack, selling_price, added_to_stock`

// PurchaseRepo PurchaseRepository adapter over PostgreSQL (pool or tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository builds the adapter. Pass a pool or a tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create inserts a purchase header.
func (r *PurchaseRepo) Create(p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, supplier, total_cost, notes, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Supplier, p.TotalCost, p.Notes, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

// CreateItem inserts a purchase line.
func (r *PurchaseRepo) CreateItem(item *entity.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, purchase_id, product_id, quantity, unit_cost,
			purchase_unit, units_per_pack, selling_price, added_to_stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.PurchaseID, item.ProductID, item.Quantity, item.UnitCost,
		item.PurchaseUnit, item.UnitsPerPack, item.SellingPrice, item.AddedToStock)
	if err != nil {
		return fmt.Errorf("create purchase item: %w", err)
	}
	return nil
}

// GetByID fetches a purchase header, nil when absent.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	query := `SELECT id, supplier, total_cost, notes, created_by, created_at
		FROM purchases WHERE id = $1`
	var p entity.Purchase
	err := r.q.QueryRow(context.Background(), query, id).
		Scan(&p.ID, &p.Supplier, &p.TotalCost, &p.Notes, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return &p, nil
}

func scanPurchaseItem(row pgx.Row) (*entity.PurchaseItem, error) {
	var it entity.PurchaseItem
	err := row.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitCost,
		&it.PurchaseUnit, &it.UnitsPerPack, &it.SellingPrice, &it.AddedToStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan purchase item: %w", err)
	}
	return &it, nil
}

// GetItem fetches a single purchase line, nil when absent.
func (r *PurchaseRepo) GetItem(itemID string) (*entity.PurchaseItem, error) {
	query := `SELECT ` + purchaseItemColumns + ` FROM purchase_items WHERE id = $1`
	return scanPurchaseItem(r.q.QueryRow(context.Background(), query, itemID))
}

// GetItems returns a purchase's lines in insertion order.
func (r *PurchaseRepo) GetItems(purchaseID string) ([]*entity.PurchaseItem, error) {
	query := `SELECT ` + purchaseItemColumns + ` FROM purchase_items WHERE purchase_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get purchase items: %w", err)
	}
	defer rows.Close()
	var out []*entity.PurchaseItem
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitCost,
			&it.PurchaseUnit, &it.UnitsPerPack, &it.SellingPrice, &it.AddedToStock); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// MarkItemApplied flips added_to_stock. Must run in the same transaction
// as the stock increment it guards; the flag is what makes re-application
// a no-op.
func (r *PurchaseRepo) MarkItemApplied(itemID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE purchase_items SET added_to_stock = true WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("mark purchase item applied: %w", err)
	}
	return nil
}

// List returns purchase headers, newest first.
func (r *PurchaseRepo) List(limit, offset int) ([]*entity.Purchase, error) {
	query := `SELECT id, supplier, total_cost, notes, created_by, created_at
		FROM purchases ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var out []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(&p.ID, &p.Supplier, &p.TotalCost, &p.Notes, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
