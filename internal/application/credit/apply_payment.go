// Package credit implements the utang ledger: customer outstanding balances,
// per-sale payment state, and oldest-first allocation of unlinked payments.
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// TxRunner runs fn with transaction-bound payment, sale and customer repos.
type TxRunner interface {
	RunPayment(ctx context.Context, fn func(
		paymentRepo repository.PaymentRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// ApplyPaymentUseCase applies a credit payment. The customer's balance is
// decremented up front (clamped at zero); a linked payment settles one sale,
// an unlinked payment walks the customer's open utang sales oldest-first,
// filling each in full before advancing. Overpayment beyond all open sales is
// absorbed — no residual credit is tracked.
type ApplyPaymentUseCase struct {
	txRunner     TxRunner
	customerRepo repository.CustomerRepository
	paymentRepo  repository.PaymentRepository
	notifier     *notify.Notifier
	log          *logger.Logger
}

// NewApplyPaymentUseCase builds the use case.
func NewApplyPaymentUseCase(txRunner TxRunner, customerRepo repository.CustomerRepository, paymentRepo repository.PaymentRepository, notifier *notify.Notifier, log *logger.Logger) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{txRunner: txRunner, customerRepo: customerRepo, paymentRepo: paymentRepo, notifier: notifier, log: log}
}

// ApplyPayment records the payment and its side effects in one transaction.
func (uc *ApplyPaymentUseCase) ApplyPayment(ctx context.Context, userID string, in dto.ApplyPaymentRequest) (*dto.PaymentResponse, error) {
	if userID == "" || in.CustomerID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	payment := &entity.Payment{
		ID:         uuid.New().String(),
		CustomerID: in.CustomerID,
		SaleID:     in.SaleID,
		Amount:     in.Amount,
		Method:     in.Method,
		Notes:      in.Notes,
		ReceivedBy: userID,
		CreatedAt:  now,
	}
	var newBalance decimal.Decimal
	var allocations []dto.PaymentAllocation

	err := uc.txRunner.RunPayment(ctx, func(
		paymentRepo repository.PaymentRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		customer, err := customerRepo.GetByIDForUpdate(in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}

		// A linked payment may only target the paying customer's own utang
		// sale. Validated before any mutation so a rejected request leaves
		// both ledgers untouched.
		var linkedSale *entity.Sale
		if in.SaleID != nil {
			linkedSale, err = saleRepo.GetByID(*in.SaleID)
			if err != nil {
				return err
			}
			if linkedSale == nil {
				return domain.ErrNotFound
			}
			if linkedSale.CustomerID == nil || *linkedSale.CustomerID != in.CustomerID ||
				linkedSale.PaymentMethod != entity.PaymentUtang {
				return domain.ErrInvalidInput
			}
		}

		// Balance decrement, clamped: overpayment is absorbed, never a
		// negative balance.
		newBalance = customer.OutstandingBalance.Sub(in.Amount)
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}
		customer.OutstandingBalance = newBalance
		customer.UpdatedAt = now
		if err := customerRepo.Update(customer); err != nil {
			return err
		}

		// Canonical payment record, kept unmodified.
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}

		if linkedSale != nil {
			return raiseAmountPaid(saleRepo, linkedSale, in.Amount)
		}

		// Unlinked: oldest-first, full-fill-then-advance.
		open, err := saleRepo.ListOpenUtangByCustomer(in.CustomerID)
		if err != nil {
			return err
		}
		remaining := in.Amount
		for _, sale := range open {
			if !remaining.GreaterThan(decimal.Zero) {
				break
			}
			outstanding := sale.Outstanding()
			alloc := decimal.Min(remaining, outstanding)
			if err := raiseAmountPaid(saleRepo, sale, alloc); err != nil {
				return err
			}
			linked := &entity.Payment{
				ID:            uuid.New().String(),
				CustomerID:    in.CustomerID,
				SaleID:        &sale.ID,
				Amount:        alloc,
				Method:        in.Method,
				Notes:         fmt.Sprintf("allocated from payment %s", payment.ID),
				AllocatedFrom: &payment.ID,
				ReceivedBy:    userID,
				CreatedAt:     now,
			}
			if err := paymentRepo.Create(linked); err != nil {
				return err
			}
			allocations = append(allocations, dto.PaymentAllocation{
				SaleID:    sale.ID,
				Amount:    alloc,
				PaymentID: linked.ID,
			})
			remaining = remaining.Sub(alloc)
		}
		// Any remainder past full settlement is simply not re-applied: the
		// balance was already decremented by the full amount up front.
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.PaymentApplied(payment, newBalance)

	return &dto.PaymentResponse{
		ID:          payment.ID,
		CustomerID:  payment.CustomerID,
		SaleID:      payment.SaleID,
		Amount:      payment.Amount,
		Method:      payment.Method,
		Notes:       payment.Notes,
		NewBalance:  newBalance,
		Allocations: allocations,
		CreatedAt:   payment.CreatedAt,
	}, nil
}

// ListByCustomer returns a customer's payment history, newest first.
func (uc *ApplyPaymentUseCase) ListByCustomer(ctx context.Context, customerID string, page dto.PageRequest) ([]*dto.PaymentResponse, error) {
	page.DefaultPage()
	payments, err := uc.paymentRepo.ListByCustomer(customerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, &dto.PaymentResponse{
			ID:         p.ID,
			CustomerID: p.CustomerID,
			SaleID:     p.SaleID,
			Amount:     p.Amount,
			Method:     p.Method,
			Notes:      p.Notes,
			CreatedAt:  p.CreatedAt,
		})
	}
	return out, nil
}

// raiseAmountPaid raises a sale's amount_paid by amount, clamped at the total
// so transient overpay never leaves amount_paid above total_amount.
func raiseAmountPaid(saleRepo repository.SaleRepository, sale *entity.Sale, amount decimal.Decimal) error {
	paid := sale.AmountPaid.Add(amount)
	if paid.GreaterThan(sale.TotalAmount) {
		paid = sale.TotalAmount
	}
	sale.AmountPaid = paid
	return saleRepo.Update(sale)
}
