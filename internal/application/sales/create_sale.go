package sales

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

// CreateSaleUseCase commits a multi-line sale atomically: header, line items,
// per-product stock decrements and — for utang — the customer balance
// increase all ride one transaction. Retried submissions carrying the same
// idempotency key return the already-committed sale untouched.
type CreateSaleUseCase struct {
	txRunner     TxRunner
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	shiftRepo    repository.ShiftRepository
	notifier     *notify.Notifier
	log          *logger.Logger
}

// NewCreateSaleUseCase builds the use case.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	shiftRepo repository.ShiftRepository,
	notifier *notify.Notifier,
	log *logger.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		shiftRepo:    shiftRepo,
		notifier:     notifier,
		log:          log,
	}
}

// resolvedLine is a sale line after pricing resolution, ready to persist.
type resolvedLine struct {
	product         *entity.Product
	quantity        decimal.Decimal
	unitPrice       decimal.Decimal
	requestedAmount *decimal.Decimal
}

// CreateSale validates and commits a sale for the acting cashier.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if cashierID == "" || len(in.Items) == 0 || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if in.PaymentMethod == entity.PaymentUtang && in.CustomerID == nil {
		return nil, domain.ErrInvalidInput // utang needs someone to owe it
	}

	// 1) Idempotency replay: same key returns the prior sale, no side effects.
	if in.IdempotencyKey != nil && *in.IdempotencyKey != "" {
		existing, err := uc.saleRepo.GetByIdempotencyKey(*in.IdempotencyKey)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return uc.toResponse(existing)
		}
	}

	// 2) A sale cannot exist outside a shift.
	shift, err := uc.shiftRepo.GetOpenByUser(cashierID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrNoActiveShift
	}

	// 3) Resolve pricing and quantities outside the transaction (read-only).
	lines := make([]resolvedLine, 0, len(in.Items))
	for i := range in.Items {
		line, err := uc.resolveLine(&in.Items[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}

	// 4) Server-side total, exact decimal.
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(pricing.LineTotal(l.quantity, l.unitPrice))
	}

	// 5) Payment state: utang starts unpaid, everything else settles in full.
	amountPaid := total
	if in.PaymentMethod == entity.PaymentUtang {
		amountPaid = decimal.Zero
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		CustomerID:     in.CustomerID,
		CashierID:      cashierID,
		ShiftID:        shift.ID,
		TotalAmount:    total,
		AmountPaid:     amountPaid,
		PaymentMethod:  in.PaymentMethod,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
	}
	items := make([]*entity.SaleItem, 0, len(lines))

	// 6) One all-or-nothing transaction.
	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
	) error {
		// Stock check-and-decrement under a row lock per product. Any
		// shortfall aborts the whole sale.
		for _, l := range lines {
			p, err := productRepo.GetByIDForUpdate(l.product.ID)
			if err != nil {
				return err
			}
			if p == nil || !p.IsActive {
				return domain.ErrProductNotFound
			}
			if p.StockQuantity.LessThan(l.quantity) {
				return &domain.StockError{ProductID: p.ID, ProductName: p.Name, Available: p.StockQuantity}
			}
			p.StockQuantity = p.StockQuantity.Sub(l.quantity)
			p.UpdatedAt = now
			if err := productRepo.Update(p); err != nil {
				return err
			}
		}

		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, l := range lines {
			item := &entity.SaleItem{
				ID:              uuid.New().String(),
				SaleID:          sale.ID,
				ProductID:       l.product.ID,
				Quantity:        l.quantity,
				UnitPrice:       l.unitPrice,
				RequestedAmount: l.requestedAmount,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}

		if in.PaymentMethod == entity.PaymentUtang {
			c, err := customerRepo.GetByIDForUpdate(*in.CustomerID)
			if err != nil {
				return err
			}
			if c == nil {
				return domain.ErrNotFound
			}
			c.OutstandingBalance = c.OutstandingBalance.Add(total)
			c.LastUtangDate = &now
			c.UpdatedAt = now
			return customerRepo.Update(c)
		}
		return nil
	})
	if err != nil {
		// Concurrent duplicate submission lost the unique-key race: the other
		// request committed first, return its sale.
		if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != nil {
			if existing, ferr := uc.saleRepo.GetByIdempotencyKey(*in.IdempotencyKey); ferr == nil && existing != nil {
				return uc.toResponse(existing)
			}
		}
		return nil, err
	}

	// 7) Post-commit side effects: best effort, never fail the sale.
	uc.afterCommit(sale, items, lines)

	return uc.buildResponse(sale, items), nil
}

// resolveLine applies the unit & pricing rules to one requested line.
func (uc *CreateSaleUseCase) resolveLine(req *dto.SaleLineRequest) (*resolvedLine, error) {
	p, err := uc.productRepo.GetByID(req.ProductID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, domain.ErrProductNotFound
	}

	scheme := pricing.SchemeOf(p)
	unitPrice, ok := scheme.ResolveUnitPrice(req.UnitPrice)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	qty := req.Quantity
	if qty.IsZero() && req.RequestedAmount != nil {
		derived := scheme.QuantityForAmount(*req.RequestedAmount, unitPrice)
		if derived == nil {
			return nil, domain.ErrInvalidInput
		}
		qty = derived.Round(3)
	}
	if qty.LessThan(entity.MinSaleQuantity) {
		return nil, domain.ErrInvalidQuantity
	}

	return &resolvedLine{
		product:         p,
		quantity:        qty,
		unitPrice:       unitPrice,
		requestedAmount: req.RequestedAmount,
	}, nil
}

// afterCommit runs the explicit post-commit steps: customer total recompute
// and event fan-out. Failures are logged and swallowed.
func (uc *CreateSaleUseCase) afterCommit(sale *entity.Sale, items []*entity.SaleItem, lines []resolvedLine) {
	if sale.CustomerID != nil {
		total, err := uc.saleRepo.SumTotalByCustomer(*sale.CustomerID)
		if err == nil {
			err = uc.customerRepo.SetTotalPurchases(*sale.CustomerID, total)
		}
		if err != nil {
			uc.log.Warn().Err(err).Str("customer_id", *sale.CustomerID).Msg("total_purchases recompute failed")
		}
	}

	uc.notifier.SaleCreated(sale, items)
	for _, l := range lines {
		// Re-read for the post-decrement quantity; fall back to the stale
		// copy if the read fails.
		p, err := uc.productRepo.GetByID(l.product.ID)
		if err != nil || p == nil {
			p = l.product
		}
		uc.notifier.StockChanged(p)
	}
}

// GetSale returns a committed sale with its items.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(sale)
}

func (uc *CreateSaleUseCase) toResponse(sale *entity.Sale) (*dto.SaleResponse, error) {
	items, err := uc.saleRepo.GetItems(sale.ID)
	if err != nil {
		return nil, err
	}
	return uc.buildResponse(sale, items), nil
}

func (uc *CreateSaleUseCase) buildResponse(sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		CustomerID:    sale.CustomerID,
		CashierID:     sale.CashierID,
		ShiftID:       sale.ShiftID,
		TotalAmount:   sale.TotalAmount,
		AmountPaid:    sale.AmountPaid,
		IsFullyPaid:   sale.IsFullyPaid(),
		PaymentMethod: sale.PaymentMethod,
		CreatedAt:     sale.CreatedAt,
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, it := range items {
		name := ""
		if p, err := uc.productRepo.GetByID(it.ProductID); err == nil && p != nil {
			name = p.Name
		}
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     name,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice(),
			RequestedAmount: it.RequestedAmount,
		})
	}
	return resp
}
