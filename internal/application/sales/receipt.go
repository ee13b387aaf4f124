package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/repository"
)

// ReceiptLine is one printed line of a sale receipt.
type ReceiptLine struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Receipt carries everything the printed receipt shows.
type Receipt struct {
	SaleID        string
	StoreName     string
	CashierName   string
	CustomerName  string
	PaymentMethod string
	CreatedAt     time.Time
	Lines         []ReceiptLine
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	Outstanding   decimal.Decimal
}

// ReceiptPDFGenerator renders a receipt to PDF bytes.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *Receipt) ([]byte, error)
}

// ReceiptUseCase assembles and renders sale receipts.
type ReceiptUseCase struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	gen          ReceiptPDFGenerator
	storeName    string
}

// NewReceiptUseCase builds the use case.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	gen ReceiptPDFGenerator,
	storeName string,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		gen:          gen,
		storeName:    storeName,
	}
}

// GenerateReceipt renders the receipt PDF for a committed sale.
func (uc *ReceiptUseCase) GenerateReceipt(ctx context.Context, saleID string) ([]byte, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}

	items, err := uc.saleRepo.GetItems(sale.ID)
	if err != nil {
		return nil, err
	}

	r := &Receipt{
		SaleID:        sale.ID,
		StoreName:     uc.storeName,
		PaymentMethod: sale.PaymentMethod,
		CreatedAt:     sale.CreatedAt,
		TotalAmount:   sale.TotalAmount,
		AmountPaid:    sale.AmountPaid,
		Outstanding:   sale.Outstanding(),
		Lines:         make([]ReceiptLine, 0, len(items)),
	}

	if u, err := uc.userRepo.GetByID(sale.CashierID); err == nil && u != nil {
		r.CashierName = u.Name
	}
	if sale.CustomerID != nil {
		if c, err := uc.customerRepo.GetByID(*sale.CustomerID); err == nil && c != nil {
			r.CustomerName = c.Name
		}
	}

	for _, it := range items {
		name := it.ProductID
		if p, err := uc.productRepo.GetByID(it.ProductID); err == nil && p != nil {
			name = p.Name
		}
		r.Lines = append(r.Lines, ReceiptLine{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.TotalPrice(),
		})
	}

	return uc.gen.GenerateReceiptPDF(ctx, r)
}
