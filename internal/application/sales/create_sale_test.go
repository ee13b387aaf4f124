package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/application/sales"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes. Unused interface methods stay on the embedded nil and
// panic if reached, which is what we want in a unit test.
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	repository.ProductRepository
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return f.products[id], nil
}

func (f *fakeProductRepo) Update(p *entity.Product) error {
	f.products[p.ID] = p
	return nil
}

type fakeSaleRepo struct {
	repository.SaleRepository
	sales map[string]*entity.Sale
	items map[string][]*entity.SaleItem

	// raceWinner simulates a concurrent request that commits between the
	// replay pre-check and the insert: invisible to the first key lookup,
	// visible to every later one, and owning the unique key on insert.
	raceWinner *entity.Sale
	keyLookups int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: make(map[string]*entity.Sale),
		items: make(map[string][]*entity.SaleItem),
	}
}

func (f *fakeSaleRepo) Create(s *entity.Sale) error {
	if s.IdempotencyKey != nil {
		if f.raceWinner != nil && f.raceWinner.IdempotencyKey != nil &&
			*f.raceWinner.IdempotencyKey == *s.IdempotencyKey {
			return domain.ErrDuplicate
		}
		for _, existing := range f.sales {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *s.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
	}
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleRepo) CreateItem(item *entity.SaleItem) error {
	f.items[item.SaleID] = append(f.items[item.SaleID], item)
	return nil
}

func (f *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) GetByIdempotencyKey(key string) (*entity.Sale, error) {
	if f.raceWinner != nil && f.raceWinner.IdempotencyKey != nil &&
		*f.raceWinner.IdempotencyKey == key {
		f.keyLookups++
		if f.keyLookups == 1 {
			return nil, nil
		}
		return f.raceWinner, nil
	}
	for _, s := range f.sales {
		if s.IdempotencyKey != nil && *s.IdempotencyKey == key {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	return f.items[saleID], nil
}

func (f *fakeSaleRepo) SumTotalByCustomer(customerID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range f.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID {
			total = total.Add(s.TotalAmount)
		}
	}
	return total, nil
}

type fakeCustomerRepo struct {
	repository.CustomerRepository
	customers map[string]*entity.Customer
	totals    map[string]decimal.Decimal
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: make(map[string]*entity.Customer),
		totals:    make(map[string]decimal.Decimal),
	}
}

func (f *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeCustomerRepo) GetByIDForUpdate(id string) (*entity.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeCustomerRepo) Update(c *entity.Customer) error {
	f.customers[c.ID] = c
	return nil
}

func (f *fakeCustomerRepo) SetTotalPurchases(id string, total decimal.Decimal) error {
	f.totals[id] = total
	return nil
}

type fakeShiftRepo struct {
	repository.ShiftRepository
	openByUser map[string]*entity.Shift
}

func (f *fakeShiftRepo) GetOpenByUser(userID string) (*entity.Shift, error) {
	return f.openByUser[userID], nil
}

// fakeTxRunner hands the use-case callback the same fakes; there is no real
// transaction to roll back in memory.
type fakeTxRunner struct {
	saleRepo     *fakeSaleRepo
	productRepo  *fakeProductRepo
	customerRepo *fakeCustomerRepo
}

func (f *fakeTxRunner) RunSale(_ context.Context, fn func(
	repository.SaleRepository, repository.ProductRepository, repository.CustomerRepository,
) error) error {
	return fn(f.saleRepo, f.productRepo, f.customerRepo)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type saleFixture struct {
	uc        *sales.CreateSaleUseCase
	saleRepo  *fakeSaleRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

const (
	cashierID  = "cashier-1"
	customerID = "customer-1"
)

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	products := &fakeProductRepo{products: map[string]*entity.Product{
		"coke": {
			ID: "coke", Name: "Coke Sakto", UnitType: entity.UnitPiece,
			PricingModel: entity.PricingFixedPerUnit,
			Price:        decPtr("10.50"), StockQuantity: dec("24"), IsActive: true,
		},
		"rice": {
			ID: "rice", Name: "Rice", UnitType: entity.UnitKg,
			PricingModel: entity.PricingFixedPerWeight,
			Price:        decPtr("52"), StockQuantity: dec("10"), IsActive: true,
		},
		"ice-candy": {
			ID: "ice-candy", Name: "Ice Candy", UnitType: entity.UnitPiece,
			PricingModel: entity.PricingVariable,
			StockQuantity: dec("50"), IsActive: true,
		},
	}}
	saleRepo := newFakeSaleRepo()
	customers := newFakeCustomerRepo()
	customers.customers[customerID] = &entity.Customer{
		ID: customerID, Name: "Aling Nena", OutstandingBalance: decimal.Zero,
	}
	shiftRepo := &fakeShiftRepo{openByUser: map[string]*entity.Shift{
		cashierID: {ID: "shift-1", UserID: cashierID, Status: entity.ShiftOpen, StartTime: time.Now()},
	}}
	tx := &fakeTxRunner{saleRepo: saleRepo, productRepo: products, customerRepo: customers}
	notifier := notify.NewNotifier(nopPublisher{}, logger.Nop())

	return &saleFixture{
		uc:        sales.NewCreateSaleUseCase(tx, saleRepo, products, customers, shiftRepo, notifier, logger.Nop()),
		saleRepo:  saleRepo,
		products:  products,
		customers: customers,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// The server computes the total in exact decimal: 3 × 10.50 + 2.5 × 52 = 161.50.
func TestCreateSale_ExactDecimalTotal(t *testing.T) {
	f := newSaleFixture(t)

	out, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleLineRequest{
			{ProductID: "coke", Quantity: dec("3")},
			{ProductID: "rice", Quantity: dec("2.5")},
		},
	})
	require.NoError(t, err)

	assert.True(t, out.TotalAmount.Equal(dec("161.50")), "total = %s", out.TotalAmount)
	assert.True(t, out.AmountPaid.Equal(dec("161.50")), "cash sale settles in full")
	assert.True(t, out.IsFullyPaid)
	assert.Len(t, out.Items, 2)

	// Stock decremented exactly.
	assert.True(t, f.products.products["coke"].StockQuantity.Equal(dec("21")))
	assert.True(t, f.products.products["rice"].StockQuantity.Equal(dec("7.5")))
}

// A retried submission with the same idempotency key returns the original
// sale and causes no second decrement.
func TestCreateSale_IdempotentReplay(t *testing.T) {
	f := newSaleFixture(t)
	req := dto.CreateSaleRequest{
		PaymentMethod:  entity.PaymentCash,
		IdempotencyKey: strPtr("retry-123"),
		Items:          []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("2")}},
	}

	first, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)

	second, err := f.uc.CreateSale(context.Background(), cashierID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "replay must return the committed sale")
	assert.Len(t, f.saleRepo.sales, 1)
	assert.True(t, f.products.products["coke"].StockQuantity.Equal(dec("22")),
		"stock decremented exactly once")
}

func TestCreateSale_NoActiveShift(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), "someone-without-shift", dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)
}

// A line exceeding available stock aborts the sale with the product and the
// available quantity attached.
func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("25")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "coke", stockErr.ProductID)
	assert.True(t, stockErr.Available.Equal(dec("24")))

	assert.Empty(t, f.saleRepo.sales, "no sale may be recorded")
}

// An utang sale starts unpaid and raises the customer's outstanding balance
// by the full total.
func TestCreateSale_UtangRaisesCustomerBalance(t *testing.T) {
	f := newSaleFixture(t)

	out, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		CustomerID:    strPtr(customerID),
		PaymentMethod: entity.PaymentUtang,
		Items:         []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("4")}},
	})
	require.NoError(t, err)

	assert.True(t, out.AmountPaid.IsZero(), "utang starts unpaid")
	assert.False(t, out.IsFullyPaid)

	c := f.customers.customers[customerID]
	assert.True(t, c.OutstandingBalance.Equal(dec("42")), "balance = %s", c.OutstandingBalance)
	assert.NotNil(t, c.LastUtangDate)
}

func TestCreateSale_UtangRequiresCustomer(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentUtang,
		Items:         []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Variable pricing: "20 pesos of ice candy" at 80/unit resolves to 0.25 units.
func TestCreateSale_VariableAmountDerivesQuantity(t *testing.T) {
	f := newSaleFixture(t)

	out, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleLineRequest{{
			ProductID:       "ice-candy",
			UnitPrice:       decPtr("80"),
			RequestedAmount: decPtr("20"),
		}},
	})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Quantity.Equal(dec("0.25")))
	assert.True(t, out.TotalAmount.Equal(dec("20")))
}

// An inexact division (20 pesos at 3/unit) rounds the quantity to 3 decimal
// places and charges quantity × price, so the charged total can drift from
// the tendered amount by a fraction of a centavo. The tendered amount stays
// on the line for audit.
func TestCreateSale_VariableAmountInexactDivision(t *testing.T) {
	f := newSaleFixture(t)

	out, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items: []dto.SaleLineRequest{{
			ProductID:       "ice-candy",
			UnitPrice:       decPtr("3"),
			RequestedAmount: decPtr("20"),
		}},
	})
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Quantity.Equal(dec("6.667")), "quantity = %s", out.Items[0].Quantity)
	assert.True(t, out.TotalAmount.Equal(dec("20.001")), "total = %s", out.TotalAmount)
	require.NotNil(t, out.Items[0].RequestedAmount)
	assert.True(t, out.Items[0].RequestedAmount.Equal(dec("20")))
}

// A duplicate submission that loses the unique-key race — the concurrent
// twin commits between the replay pre-check and the insert — must re-fetch
// and return the committed sale instead of surfacing the conflict.
func TestCreateSale_IdempotencyKeyRaceLoserReturnsWinner(t *testing.T) {
	f := newSaleFixture(t)
	f.saleRepo.raceWinner = &entity.Sale{
		ID: "winner", CashierID: cashierID, ShiftID: "shift-1",
		TotalAmount: dec("21"), AmountPaid: dec("21"),
		PaymentMethod: entity.PaymentCash, IdempotencyKey: strPtr("race-1"),
	}

	out, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod:  entity.PaymentCash,
		IdempotencyKey: strPtr("race-1"),
		Items:          []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "winner", out.ID, "loser must return the committed sale")
	assert.True(t, out.TotalAmount.Equal(dec("21")))
	assert.NotContains(t, f.saleRepo.sales, out.ID, "loser recorded nothing itself")
}

// A variable-priced line without an explicit unit price cannot be resolved.
func TestCreateSale_VariableRequiresUnitPrice(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleLineRequest{{ProductID: "ice-candy", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_RejectsDustQuantity(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.uc.CreateSale(context.Background(), cashierID, dto.CreateSaleRequest{
		PaymentMethod: entity.PaymentCash,
		Items:         []dto.SaleLineRequest{{ProductID: "coke", Quantity: dec("0.0001")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
