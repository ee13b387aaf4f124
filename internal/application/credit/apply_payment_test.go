package credit_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/pos-api/internal/application/credit"
	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeCustomerRepo struct {
	repository.CustomerRepository
	customers map[string]*entity.Customer
}

func (f *fakeCustomerRepo) GetByIDForUpdate(id string) (*entity.Customer, error) {
	return f.customers[id], nil
}

func (f *fakeCustomerRepo) Update(c *entity.Customer) error {
	f.customers[c.ID] = c
	return nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	payments []*entity.Payment
}

func (f *fakePaymentRepo) Create(p *entity.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

type fakeSaleRepo struct {
	repository.SaleRepository
	sales map[string]*entity.Sale
}

func (f *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) Update(s *entity.Sale) error {
	f.sales[s.ID] = s
	return nil
}

func (f *fakeSaleRepo) ListOpenUtangByCustomer(customerID string) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range f.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID &&
			s.PaymentMethod == entity.PaymentUtang && s.AmountPaid.LessThan(s.TotalAmount) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeTxRunner struct {
	paymentRepo  *fakePaymentRepo
	saleRepo     *fakeSaleRepo
	customerRepo *fakeCustomerRepo
}

func (f *fakeTxRunner) RunPayment(_ context.Context, fn func(
	repository.PaymentRepository, repository.SaleRepository, repository.CustomerRepository,
) error) error {
	return fn(f.paymentRepo, f.saleRepo, f.customerRepo)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const customerID = "customer-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

type creditFixture struct {
	uc        *credit.ApplyPaymentUseCase
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
	payments  *fakePaymentRepo
}

// newCreditFixture seeds three open utang sales of 50, 30 and 20 pesos,
// oldest first, and an outstanding balance of 100.
func newCreditFixture(t *testing.T) *creditFixture {
	t.Helper()
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	sales := &fakeSaleRepo{sales: map[string]*entity.Sale{
		"sale-a": {
			ID: "sale-a", CustomerID: strPtr(customerID), PaymentMethod: entity.PaymentUtang,
			TotalAmount: dec("50"), AmountPaid: decimal.Zero, CreatedAt: base,
		},
		"sale-b": {
			ID: "sale-b", CustomerID: strPtr(customerID), PaymentMethod: entity.PaymentUtang,
			TotalAmount: dec("30"), AmountPaid: decimal.Zero, CreatedAt: base.Add(time.Hour),
		},
		"sale-c": {
			ID: "sale-c", CustomerID: strPtr(customerID), PaymentMethod: entity.PaymentUtang,
			TotalAmount: dec("20"), AmountPaid: decimal.Zero, CreatedAt: base.Add(2 * time.Hour),
		},
	}}
	customers := &fakeCustomerRepo{customers: map[string]*entity.Customer{
		customerID: {ID: customerID, Name: "Aling Nena", OutstandingBalance: dec("100")},
	}}
	payments := &fakePaymentRepo{}
	tx := &fakeTxRunner{paymentRepo: payments, saleRepo: sales, customerRepo: customers}
	notifier := notify.NewNotifier(nopPublisher{}, logger.Nop())

	return &creditFixture{
		uc:        credit.NewApplyPaymentUseCase(tx, customers, payments, notifier, logger.Nop()),
		customers: customers,
		sales:     sales,
		payments:  payments,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Paying 70 against open sales of 50/30/20: the oldest fills completely, the
// remaining 20 goes to the next sale, the third stays untouched.
func TestApplyPayment_AllocatesOldestFirst(t *testing.T) {
	f := newCreditFixture(t)

	out, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("70"),
		Method:     entity.PaymentCash,
	})
	require.NoError(t, err)

	assert.True(t, out.NewBalance.Equal(dec("30")), "balance = %s", out.NewBalance)

	require.Len(t, out.Allocations, 2)
	assert.Equal(t, "sale-a", out.Allocations[0].SaleID)
	assert.True(t, out.Allocations[0].Amount.Equal(dec("50")))
	assert.Equal(t, "sale-b", out.Allocations[1].SaleID)
	assert.True(t, out.Allocations[1].Amount.Equal(dec("20")))

	assert.True(t, f.sales.sales["sale-a"].IsFullyPaid())
	assert.True(t, f.sales.sales["sale-b"].AmountPaid.Equal(dec("20")))
	assert.True(t, f.sales.sales["sale-c"].AmountPaid.IsZero())

	// Canonical payment plus one linked record per allocation.
	require.Len(t, f.payments.payments, 3)
	canonical := f.payments.payments[0]
	assert.Nil(t, canonical.AllocatedFrom)
	for _, linked := range f.payments.payments[1:] {
		require.NotNil(t, linked.AllocatedFrom)
		assert.Equal(t, canonical.ID, *linked.AllocatedFrom)
	}
}

// Overpaying every open sale clamps the balance at zero and leaves no sale
// above its total.
func TestApplyPayment_OverpaymentClampsAtZero(t *testing.T) {
	f := newCreditFixture(t)

	out, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("150"),
		Method:     entity.PaymentCash,
	})
	require.NoError(t, err)

	assert.True(t, out.NewBalance.IsZero())
	for id, s := range f.sales.sales {
		assert.True(t, s.AmountPaid.Equal(s.TotalAmount), "sale %s fully settled", id)
	}
}

// A linked payment targets one sale only; amount_paid never exceeds the total.
func TestApplyPayment_LinkedPaymentClampsAtTotal(t *testing.T) {
	f := newCreditFixture(t)

	out, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("40"),
		Method:     entity.PaymentCash,
		SaleID:     strPtr("sale-b"),
	})
	require.NoError(t, err)

	assert.True(t, f.sales.sales["sale-b"].AmountPaid.Equal(dec("30")),
		"paid clamped at the sale total")
	assert.True(t, f.sales.sales["sale-a"].AmountPaid.IsZero(), "other sales untouched")
	assert.Empty(t, out.Allocations, "linked payments carry no allocation breakdown")
	assert.True(t, out.NewBalance.Equal(dec("60")))
}

// A linked payment naming another customer's sale must be rejected before
// any balance or sale mutation; otherwise one ledger settles the sale while
// the other customer's balance stays owing.
func TestApplyPayment_RejectsCrossCustomerLinkedPayment(t *testing.T) {
	f := newCreditFixture(t)
	f.sales.sales["sale-x"] = &entity.Sale{
		ID: "sale-x", CustomerID: strPtr("customer-other"), PaymentMethod: entity.PaymentUtang,
		TotalAmount: dec("40"), AmountPaid: decimal.Zero,
	}

	_, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("40"),
		Method:     entity.PaymentCash,
		SaleID:     strPtr("sale-x"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, f.customers.customers[customerID].OutstandingBalance.Equal(dec("100")),
		"balance untouched")
	assert.True(t, f.sales.sales["sale-x"].AmountPaid.IsZero(), "foreign sale untouched")
	assert.Empty(t, f.payments.payments, "no payment recorded")
}

// Only utang sales carry an outstanding amount; linking to a settled cash
// sale makes no sense.
func TestApplyPayment_RejectsLinkToNonUtangSale(t *testing.T) {
	f := newCreditFixture(t)
	f.sales.sales["sale-cash"] = &entity.Sale{
		ID: "sale-cash", CustomerID: strPtr(customerID), PaymentMethod: entity.PaymentCash,
		TotalAmount: dec("25"), AmountPaid: dec("25"),
	}

	_, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("25"),
		Method:     entity.PaymentCash,
		SaleID:     strPtr("sale-cash"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.customers.customers[customerID].OutstandingBalance.Equal(dec("100")))
}

func TestApplyPayment_LinkToUnknownSale(t *testing.T) {
	f := newCreditFixture(t)

	_, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     dec("10"),
		Method:     entity.PaymentCash,
		SaleID:     strPtr("ghost"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyPayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newCreditFixture(t)

	_, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: customerID,
		Amount:     decimal.Zero,
		Method:     entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyPayment_UnknownCustomer(t *testing.T) {
	f := newCreditFixture(t)

	_, err := f.uc.ApplyPayment(context.Background(), "cashier-1", dto.ApplyPaymentRequest{
		CustomerID: "ghost",
		Amount:     dec("10"),
		Method:     entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
