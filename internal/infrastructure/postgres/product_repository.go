package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, barcode, category, unit_type, pricing_model,
	price, cost_price, stock_quantity, min_stock_level, is_active, created_at, updated_at`

// ProductRepo ProductRepository adapter over PostgreSQL (pool or tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository builds the adapter. Pass a pool or a tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create inserts a product. A barcode collision surfaces as ErrDuplicate.
func (r *ProductRepo) Create(p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, barcode, category, unit_type, pricing_model,
			price, cost_price, stock_quantity, min_stock_level, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Barcode, p.Category, p.UnitType, p.PricingModel,
		p.Price, p.CostPrice, p.StockQuantity, p.MinStockLevel, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Barcode, &p.Category, &p.UnitType, &p.PricingModel,
		&p.Price, &p.CostPrice, &p.StockQuantity, &p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// GetByID fetches a product, nil when absent.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate fetches a product locking its row (SELECT FOR UPDATE).
// The lock serializes the stock check-and-decrement per product until the
// enclosing transaction ends.
func (r *ProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByBarcode fetches an active product by barcode, nil when absent.
func (r *ProductRepo) GetByBarcode(barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1 AND is_active = true`
	return r.scanOne(r.q.QueryRow(context.Background(), query, barcode))
}

// Update persists all mutable product fields.
func (r *ProductRepo) Update(p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, barcode = $3, category = $4, price = $5,
			cost_price = $6, stock_quantity = $7, min_stock_level = $8,
			is_active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Barcode, p.Category, p.Price,
		p.CostPrice, p.StockQuantity, p.MinStockLevel, p.IsActive, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanMany(rows pgx.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Barcode, &p.Category, &p.UnitType, &p.PricingModel,
			&p.Price, &p.CostPrice, &p.StockQuantity, &p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// List returns active products ordered by name.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE is_active = true ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return r.scanMany(rows)
}

// Search matches name, barcode or category, case-insensitive.
func (r *ProductRepo) Search(query string, limit int) ([]*entity.Product, error) {
	sql := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true
		  AND (name ILIKE '%' || $1 || '%' OR barcode ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
		ORDER BY name LIMIT $2`
	rows, err := r.q.Query(context.Background(), sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return r.scanMany(rows)
}

// ListLowStock returns active products at or under min_stock_level,
// lowest stock first.
func (r *ProductRepo) ListLowStock() ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true AND stock_quantity <= min_stock_level
		ORDER BY stock_quantity`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return r.scanMany(rows)
}

func (r *ProductRepo) count(query string) (int, error) {
	var n int
	if err := r.q.QueryRow(context.Background(), query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CountActive counts active catalog entries.
func (r *ProductRepo) CountActive() (int, error) {
	return r.count(`SELECT count(*) FROM products WHERE is_active = true`)
}

// CountLowStock counts active products needing restock.
func (r *ProductRepo) CountLowStock() (int, error) {
	return r.count(`SELECT count(*) FROM products WHERE is_active = true AND stock_quantity <= min_stock_level`)
}

// CountOutOfStock counts active products with zero stock.
func (r *ProductRepo) CountOutOfStock() (int, error) {
	return r.count(`SELECT count(*) FROM products WHERE is_active = true AND stock_quantity <= 0`)
}

// SoftDelete flags the product inactive; history stays intact.
func (r *ProductRepo) SoftDelete(id string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	return nil
}
