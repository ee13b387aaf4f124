package repository

import "github.com/tindahan/pos-api/internal/domain/entity"

// PurchaseRepository is the persistence port for Purchase and PurchaseItem.
// MarkItemApplied flips the added_to_stock flag; it must run in the same
// transaction as the stock mutation it guards.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	CreateItem(item *entity.PurchaseItem) error
	GetByID(id string) (*entity.Purchase, error)
	GetItem(itemID string) (*entity.PurchaseItem, error)
	GetItems(purchaseID string) ([]*entity.PurchaseItem, error)
	MarkItemApplied(itemID string) error
	List(limit, offset int) ([]*entity.Purchase, error)
}
