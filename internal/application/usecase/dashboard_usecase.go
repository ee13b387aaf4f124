package usecase

import (
	"context"
	"time"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

// DashboardUseCase assembles the dashboard stats payload: sales totals over
// today/week/month, stock health counters, recent sales and best sellers.
type DashboardUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

// NewDashboardUseCase builds the use case.
func NewDashboardUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) *DashboardUseCase {
	return &DashboardUseCase{saleRepo: saleRepo, productRepo: productRepo}
}

// Stats computes the full dashboard payload.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	stats := &dto.DashboardStats{}

	var err error
	if stats.Sales.Today, err = uc.saleRepo.SumTotalSince(today); err != nil {
		return nil, err
	}
	if stats.Sales.Week, err = uc.saleRepo.SumTotalSince(weekAgo); err != nil {
		return nil, err
	}
	if stats.Sales.Month, err = uc.saleRepo.SumTotalSince(monthAgo); err != nil {
		return nil, err
	}

	if stats.Inventory.TotalProducts, err = uc.productRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.Inventory.LowStock, err = uc.productRepo.CountLowStock(); err != nil {
		return nil, err
	}
	if stats.Inventory.OutOfStock, err = uc.productRepo.CountOutOfStock(); err != nil {
		return nil, err
	}

	recent, err := uc.saleRepo.ListRecent(5)
	if err != nil {
		return nil, err
	}
	stats.RecentSales = make([]dto.SaleResponse, 0, len(recent))
	for _, s := range recent {
		stats.RecentSales = append(stats.RecentSales, toRecentSale(s))
	}

	best, err := uc.saleRepo.BestSellers(monthAgo, 5)
	if err != nil {
		return nil, err
	}
	stats.BestSellers = make([]dto.BestSellerDTO, 0, len(best))
	for _, b := range best {
		stats.BestSellers = append(stats.BestSellers, dto.BestSellerDTO{
			ProductID:    b.ProductID,
			ProductName:  b.ProductName,
			TotalSold:    b.TotalSold,
			TotalRevenue: b.TotalRevenue,
		})
	}
	return stats, nil
}

// toRecentSale maps a sale header for the dashboard feed (no line items).
func toRecentSale(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		ShiftID:       s.ShiftID,
		TotalAmount:   s.TotalAmount,
		AmountPaid:    s.AmountPaid,
		IsFullyPaid:   s.IsFullyPaid(),
		PaymentMethod: s.PaymentMethod,
		CreatedAt:     s.CreatedAt,
		Items:         []dto.SaleItemResponse{},
	}
}
