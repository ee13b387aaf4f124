package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/pricing"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

// ProductUseCase catalog CRUD. Destroy is a soft delete: the product is
// flagged inactive and vanishes from listings, keeping sale history intact.
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase builds the use case.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// Create adds a catalog entry.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	// A base price is mandatory unless the product is variable-priced.
	if in.PricingModel != entity.PricingVariable && in.Price == nil {
		return nil, domain.ErrInvalidInput
	}
	if in.StockQuantity.IsNegative() || in.MinStockLevel.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Barcode != nil && *in.Barcode != "" {
		existing, err := uc.productRepo.GetByBarcode(*in.Barcode)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}

	now := time.Now()
	p := &entity.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Barcode:       in.Barcode,
		Category:      in.Category,
		UnitType:      in.UnitType,
		PricingModel:  in.PricingModel,
		Price:         in.Price,
		CostPrice:     in.CostPrice,
		StockQuantity: in.StockQuantity.Round(3),
		MinStockLevel: in.MinStockLevel.Round(3),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productRepo.Create(p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// GetByID fetches one product.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(p), nil
}

// Update applies a partial catalog update.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Barcode != nil {
		p.Barcode = in.Barcode
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.Price = in.Price
	}
	if in.MinStockLevel != nil {
		if in.MinStockLevel.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.MinStockLevel = in.MinStockLevel.Round(3)
	}
	p.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List returns active products, paginated.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	products, err := uc.productRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// Search finds active products by name, barcode or category.
func (uc *ProductUseCase) Search(ctx context.Context, query string) ([]*dto.ProductResponse, error) {
	if query == "" {
		return []*dto.ProductResponse{}, nil
	}
	products, err := uc.productRepo.Search(query, 15)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// LowStock returns active products at or under their restock threshold,
// lowest stock first.
func (uc *ProductUseCase) LowStock(ctx context.Context) ([]*dto.ProductResponse, error) {
	products, err := uc.productRepo.ListLowStock()
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// Delete soft-deletes a product.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil || !p.IsActive {
		return domain.ErrProductNotFound
	}
	return uc.productRepo.SoftDelete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	var margin *decimal.Decimal
	if p.CostPrice != nil {
		margin = pricing.ProfitMarginPercent(p.Price, *p.CostPrice)
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Barcode:       p.Barcode,
		Category:      p.Category,
		UnitType:      p.UnitType,
		PricingModel:  p.PricingModel,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		NeedsRestock:  p.NeedsRestock(),
		ProfitMargin:  margin,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toProductResponses(products []*entity.Product) []*dto.ProductResponse {
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}
