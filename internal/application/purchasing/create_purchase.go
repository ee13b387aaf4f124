// Package purchasing implements supplier receipts and the receiving half of
// the stock ledger: pack-to-piece conversion, per-piece cost, and the
// apply-at-most-once stock mutation per purchase line.
package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/pricing"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// TxRunner runs fn with transaction-bound purchase and product repositories.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// CreatePurchaseUseCase records a supplier receipt and applies each line to
// stock exactly once, guarded by the line's added_to_stock flag.
type CreatePurchaseUseCase struct {
	txRunner     TxRunner
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	notifier     *notify.Notifier
	log          *logger.Logger
}

// NewCreatePurchaseUseCase builds the use case.
func NewCreatePurchaseUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	notifier *notify.Notifier,
	log *logger.Logger,
) *CreatePurchaseUseCase {
	return &CreatePurchaseUseCase{
		txRunner:     txRunner,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		notifier:     notifier,
		log:          log,
	}
}

// CreatePurchase validates the lines, computes the receipt total server-side
// and commits header, lines and stock application in one transaction.
func (uc *CreatePurchaseUseCase) CreatePurchase(ctx context.Context, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if userID == "" || in.Supplier == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for i := range in.Items {
		item := &in.Items[i]
		if !item.Quantity.GreaterThan(decimal.Zero) || item.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if p == nil || !p.IsActive {
			return nil, domain.ErrProductNotFound
		}
	}

	now := time.Now()
	totalCost := decimal.Zero
	for _, item := range in.Items {
		totalCost = totalCost.Add(item.Quantity.Mul(item.UnitCost))
	}

	purchase := &entity.Purchase{
		ID:        uuid.New().String(),
		Supplier:  in.Supplier,
		TotalCost: totalCost,
		Notes:     in.Notes,
		CreatedBy: userID,
		CreatedAt: now,
	}
	items := make([]*entity.PurchaseItem, 0, len(in.Items))
	var touched []*entity.Product

	err := uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := purchaseRepo.Create(purchase); err != nil {
			return err
		}
		for i := range in.Items {
			line := &in.Items[i]
			item := &entity.PurchaseItem{
				ID:           uuid.New().String(),
				PurchaseID:   purchase.ID,
				ProductID:    line.ProductID,
				Quantity:     line.Quantity,
				UnitCost:     line.UnitCost,
				PurchaseUnit: line.PurchaseUnit,
				UnitsPerPack: line.UnitsPerPack,
				SellingPrice: line.SellingPrice,
			}
			if err := purchaseRepo.CreateItem(item); err != nil {
				return err
			}
			p, err := applyLineToStock(purchaseRepo, productRepo, item, now)
			if err != nil {
				return err
			}
			items = append(items, item)
			if p != nil {
				touched = append(touched, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range touched {
		uc.notifier.StockChanged(p)
	}

	return uc.buildResponse(purchase, items), nil
}

// ReapplyLine re-processes a persisted purchase line. Already-applied lines
// are a no-op, which makes retried saves safe.
func (uc *CreatePurchaseUseCase) ReapplyLine(ctx context.Context, itemID string) error {
	var touched *entity.Product
	err := uc.txRunner.RunPurchase(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		productRepo repository.ProductRepository,
	) error {
		item, err := purchaseRepo.GetItem(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		touched, err = applyLineToStock(purchaseRepo, productRepo, item, time.Now())
		return err
	})
	if err != nil {
		return err
	}
	if touched != nil {
		uc.notifier.StockChanged(touched)
	}
	return nil
}

// applyLineToStock applies one line to stock at most once: converts packs to
// pieces, adds them under a row lock, overwrites cost (and optionally price),
// then flips the flag inside the same transaction. Returns the mutated
// product, or nil when the line was already applied.
func applyLineToStock(
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	item *entity.PurchaseItem,
	now time.Time,
) (*entity.Product, error) {
	if item.AddedToStock {
		return nil, nil
	}

	pieces, perPieceCost := pricing.ConvertPurchaseLine(item.Quantity, item.UnitCost, item.PurchaseUnit, item.UnitsPerPack)

	p, err := productRepo.GetByIDForUpdate(item.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	p.StockQuantity = p.StockQuantity.Add(pieces)
	p.CostPrice = &perPieceCost
	if item.SellingPrice != nil {
		p.Price = item.SellingPrice
	}
	p.UpdatedAt = now
	if err := productRepo.Update(p); err != nil {
		return nil, err
	}
	if err := purchaseRepo.MarkItemApplied(item.ID); err != nil {
		return nil, err
	}
	item.AddedToStock = true
	return p, nil
}

// GetPurchase returns a receipt with its lines.
func (uc *CreatePurchaseUseCase) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	purchase, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.purchaseRepo.GetItems(id)
	if err != nil {
		return nil, err
	}
	return uc.buildResponse(purchase, items), nil
}

// List returns receipts newest-first, each with its lines.
func (uc *CreatePurchaseUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.PurchaseResponse, error) {
	page.DefaultPage()
	purchases, err := uc.purchaseRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items, err := uc.purchaseRepo.GetItems(p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, uc.buildResponse(p, items))
	}
	return out, nil
}

func (uc *CreatePurchaseUseCase) buildResponse(purchase *entity.Purchase, items []*entity.PurchaseItem) *dto.PurchaseResponse {
	resp := &dto.PurchaseResponse{
		ID:        purchase.ID,
		Supplier:  purchase.Supplier,
		TotalCost: purchase.TotalCost,
		Notes:     purchase.Notes,
		CreatedAt: purchase.CreatedAt,
		Items:     make([]dto.PurchaseItemResponse, 0, len(items)),
	}
	for _, it := range items {
		pieces, perPiece := pricing.ConvertPurchaseLine(it.Quantity, it.UnitCost, it.PurchaseUnit, it.UnitsPerPack)
		resp.Items = append(resp.Items, dto.PurchaseItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			UnitCost:     it.UnitCost,
			PurchaseUnit: it.PurchaseUnit,
			UnitsPerPack: it.UnitsPerPack,
			PiecesAdded:  pieces,
			PerPieceCost: perPiece,
			SellingPrice: it.SellingPrice,
			ProfitMargin: pricing.ProfitMarginPercent(it.SellingPrice, perPiece),
			AddedToStock: it.AddedToStock,
		})
	}
	return resp
}
