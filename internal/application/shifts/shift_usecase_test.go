package shifts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/application/shifts"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeShiftRepo struct {
	repository.ShiftRepository
	shifts map[string]*entity.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[string]*entity.Shift)}
}

func (f *fakeShiftRepo) Create(s *entity.Shift) error {
	for _, existing := range f.shifts {
		if existing.UserID == s.UserID && existing.Status == entity.ShiftOpen {
			return domain.ErrDuplicate
		}
	}
	f.shifts[s.ID] = s
	return nil
}

func (f *fakeShiftRepo) GetByID(id string) (*entity.Shift, error) {
	return f.shifts[id], nil
}

func (f *fakeShiftRepo) GetOpenByUser(userID string) (*entity.Shift, error) {
	for _, s := range f.shifts {
		if s.UserID == userID && s.Status == entity.ShiftOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeShiftRepo) Update(s *entity.Shift) error {
	f.shifts[s.ID] = s
	return nil
}

type fakeSaleRepo struct {
	repository.SaleRepository
	byShift map[string][]*entity.Sale
}

func (f *fakeSaleRepo) ListByShift(shiftID string) ([]*entity.Sale, error) {
	return f.byShift[shiftID], nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	receivedBy map[string]decimal.Decimal
}

func (f *fakePaymentRepo) SumReceivedBetween(receivedBy string, _, _ time.Time) (decimal.Decimal, error) {
	return f.receivedBy[receivedBy], nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const userID = "cashier-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type shiftFixture struct {
	uc       *shifts.ShiftUseCase
	shifts   *fakeShiftRepo
	sales    *fakeSaleRepo
	payments *fakePaymentRepo
}

func newShiftFixture(t *testing.T) *shiftFixture {
	t.Helper()
	shiftRepo := newFakeShiftRepo()
	saleRepo := &fakeSaleRepo{byShift: make(map[string][]*entity.Sale)}
	paymentRepo := &fakePaymentRepo{receivedBy: make(map[string]decimal.Decimal)}
	notifier := notify.NewNotifier(nopPublisher{}, logger.Nop())

	return &shiftFixture{
		uc:       shifts.NewShiftUseCase(shiftRepo, saleRepo, paymentRepo, notifier, logger.Nop()),
		shifts:   shiftRepo,
		sales:    saleRepo,
		payments: paymentRepo,
	}
}

func (f *shiftFixture) open(t *testing.T, openingCash string) *dto.ShiftResponse {
	t.Helper()
	out, err := f.uc.Open(context.Background(), userID, dto.OpenShiftRequest{
		OpeningCash: dec(openingCash),
		TerminalID:  "till-1",
	})
	require.NoError(t, err)
	return out
}

func cashSale(shiftID, amount string) *entity.Sale {
	return &entity.Sale{
		ShiftID: shiftID, PaymentMethod: entity.PaymentCash,
		TotalAmount: dec(amount), AmountPaid: dec(amount),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Opening 1000, cash sales of 200/150/50: expected cash is 1400. Counting
// 1390 at close yields a difference of −10.
func TestCloseShift_Reconciliation(t *testing.T) {
	f := newShiftFixture(t)
	opened := f.open(t, "1000")

	f.sales.byShift[opened.ID] = []*entity.Sale{
		cashSale(opened.ID, "200"),
		cashSale(opened.ID, "150"),
		cashSale(opened.ID, "50"),
		// Utang never counts toward expected cash.
		{ShiftID: opened.ID, PaymentMethod: entity.PaymentUtang, TotalAmount: dec("75")},
	}

	out, err := f.uc.Close(context.Background(), userID, opened.ID, dto.CloseShiftRequest{
		ClosingCash: dec("1390"),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ShiftClosed, out.Status)
	assert.Equal(t, 4, out.SalesCount)
	assert.True(t, out.TotalSales.Equal(dec("475")))
	assert.True(t, out.CashSales.Equal(dec("400")))
	assert.True(t, out.UtangSales.Equal(dec("75")))
	assert.True(t, out.ExpectedCash.Equal(dec("1400")), "expected = %s", out.ExpectedCash)
	require.NotNil(t, out.CashDifference)
	assert.True(t, out.CashDifference.Equal(dec("-10")), "difference = %s", out.CashDifference)
}

func TestOpenShift_SecondOpenRejected(t *testing.T) {
	f := newShiftFixture(t)
	f.open(t, "500")

	_, err := f.uc.Open(context.Background(), userID, dto.OpenShiftRequest{OpeningCash: dec("100")})
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyOpen)
}

func TestOpenShift_NegativeFloatRejected(t *testing.T) {
	f := newShiftFixture(t)

	_, err := f.uc.Open(context.Background(), userID, dto.OpenShiftRequest{OpeningCash: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCloseShift_TwiceRejected(t *testing.T) {
	f := newShiftFixture(t)
	opened := f.open(t, "1000")

	_, err := f.uc.Close(context.Background(), userID, opened.ID, dto.CloseShiftRequest{ClosingCash: dec("1000")})
	require.NoError(t, err)

	_, err = f.uc.Close(context.Background(), userID, opened.ID, dto.CloseShiftRequest{ClosingCash: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrShiftNotOpen)
}

func TestCloseShift_OtherUserForbidden(t *testing.T) {
	f := newShiftFixture(t)
	opened := f.open(t, "1000")

	_, err := f.uc.Close(context.Background(), "someone-else", opened.ID, dto.CloseShiftRequest{ClosingCash: dec("1000")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCurrent_NoActiveShift(t *testing.T) {
	f := newShiftFixture(t)

	_, err := f.uc.Current(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrNoActiveShift)
}

// A live summary on an open shift reports expected cash but no difference yet.
func TestCurrent_LiveSummary(t *testing.T) {
	f := newShiftFixture(t)
	opened := f.open(t, "300")
	f.sales.byShift[opened.ID] = []*entity.Sale{cashSale(opened.ID, "120")}
	f.payments.receivedBy[userID] = dec("45")

	out, err := f.uc.Current(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, out.ExpectedCash.Equal(dec("420")))
	assert.True(t, out.UtangPaymentsReceived.Equal(dec("45")))
	assert.Nil(t, out.CashDifference, "no difference until the drawer is counted")
}

// Two cashiers on separate terminals can hold open shifts over the same time
// window; each summary must only count the payments that cashier took.
func TestCurrent_OverlappingShiftsSplitPaymentsByCashier(t *testing.T) {
	f := newShiftFixture(t)
	f.open(t, "100")
	_, err := f.uc.Open(context.Background(), "cashier-2", dto.OpenShiftRequest{
		OpeningCash: dec("200"),
		TerminalID:  "till-2",
	})
	require.NoError(t, err)

	f.payments.receivedBy[userID] = dec("45")
	f.payments.receivedBy["cashier-2"] = dec("80")

	mine, err := f.uc.Current(context.Background(), userID)
	require.NoError(t, err)
	theirs, err := f.uc.Current(context.Background(), "cashier-2")
	require.NoError(t, err)

	assert.True(t, mine.UtangPaymentsReceived.Equal(dec("45")),
		"first shift = %s", mine.UtangPaymentsReceived)
	assert.True(t, theirs.UtangPaymentsReceived.Equal(dec("80")),
		"second shift = %s", theirs.UtangPaymentsReceived)
}
