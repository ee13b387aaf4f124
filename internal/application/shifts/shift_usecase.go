// Package shifts implements cashier shift lifecycle and cash reconciliation.
// All reconciliation figures are derived on demand from the shift's sales and
// payments; only the shift row itself is stored.
package shifts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/domain"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/domain/repository"
	"github.com/tindahan/pos-api/pkg/logger"
)

// ShiftUseCase opens and closes shifts and computes reconciliation summaries.
type ShiftUseCase struct {
	shiftRepo   repository.ShiftRepository
	saleRepo    repository.SaleRepository
	paymentRepo repository.PaymentRepository
	notifier    *notify.Notifier
	log         *logger.Logger
}

// NewShiftUseCase builds the use case.
func NewShiftUseCase(
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	notifier *notify.Notifier,
	log *logger.Logger,
) *ShiftUseCase {
	return &ShiftUseCase{
		shiftRepo:   shiftRepo,
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		notifier:    notifier,
		log:         log,
	}
}

// Open starts a shift for the user. Exactly one open shift per user: a
// second open fails with ErrShiftAlreadyOpen.
func (uc *ShiftUseCase) Open(ctx context.Context, userID string, in dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if userID == "" || in.OpeningCash.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.shiftRepo.GetOpenByUser(userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrShiftAlreadyOpen
	}

	shift := &entity.Shift{
		ID:          uuid.New().String(),
		UserID:      userID,
		TerminalID:  in.TerminalID,
		Status:      entity.ShiftOpen,
		OpeningCash: in.OpeningCash,
		StartTime:   time.Now(),
	}
	if err := uc.shiftRepo.Create(shift); err != nil {
		// The partial unique index may beat us in a concurrent double-open.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrShiftAlreadyOpen
		}
		return nil, err
	}

	uc.notifier.ShiftOpened(shift)
	return uc.toResponse(shift, nil), nil
}

// Close ends an open shift with the counted drawer amount and reports the
// cash variance. Closing a shift that is not open fails with ErrShiftNotOpen.
func (uc *ShiftUseCase) Close(ctx context.Context, userID, shiftID string, in dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := uc.shiftRepo.GetByID(shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrNotFound
	}
	if shift.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if shift.Status != entity.ShiftOpen {
		return nil, domain.ErrShiftNotOpen
	}
	if in.ClosingCash.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	shift.Status = entity.ShiftClosed
	shift.ClosingCash = &in.ClosingCash
	shift.EndTime = &now
	if err := uc.shiftRepo.Update(shift); err != nil {
		return nil, err
	}

	summary, err := uc.summarize(shift)
	if err != nil {
		// The close is committed; a summary failure only degrades the response.
		uc.log.Warn().Err(err).Str("shift_id", shift.ID).Msg("shift summary failed")
		summary = &entity.ShiftSummary{ShiftID: shift.ID}
	}

	uc.notifier.ShiftClosed(shift, summary)
	return uc.toResponse(shift, summary), nil
}

// Current returns the user's open shift with a live summary.
func (uc *ShiftUseCase) Current(ctx context.Context, userID string) (*dto.ShiftResponse, error) {
	shift, err := uc.shiftRepo.GetOpenByUser(userID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrNoActiveShift
	}
	summary, err := uc.summarize(shift)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(shift, summary), nil
}

// Summary computes the reconciliation figures for any shift.
func (uc *ShiftUseCase) Summary(ctx context.Context, shiftID string) (*dto.ShiftResponse, error) {
	shift, err := uc.shiftRepo.GetByID(shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrNotFound
	}
	summary, err := uc.summarize(shift)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(shift, summary), nil
}

// summarize derives the reconciliation math:
//
//	expected_cash   = opening_cash + cash sales
//	cash_difference = closing_cash − expected_cash (nil while open)
func (uc *ShiftUseCase) summarize(shift *entity.Shift) (*entity.ShiftSummary, error) {
	sales, err := uc.saleRepo.ListByShift(shift.ID)
	if err != nil {
		return nil, err
	}

	sum := &entity.ShiftSummary{ShiftID: shift.ID, SalesCount: len(sales)}
	for _, s := range sales {
		sum.TotalSales = sum.TotalSales.Add(s.TotalAmount)
		switch s.PaymentMethod {
		case entity.PaymentCash:
			sum.CashSales = sum.CashSales.Add(s.TotalAmount)
		case entity.PaymentUtang:
			sum.UtangSales = sum.UtangSales.Add(s.TotalAmount)
		}
	}

	end := time.Now()
	if shift.EndTime != nil {
		end = *shift.EndTime
	}
	received, err := uc.paymentRepo.SumReceivedBetween(shift.UserID, shift.StartTime, end)
	if err != nil {
		return nil, err
	}
	sum.UtangPaymentsReceived = received

	sum.ExpectedCash = shift.OpeningCash.Add(sum.CashSales)
	if shift.ClosingCash != nil {
		diff := shift.ClosingCash.Sub(sum.ExpectedCash)
		sum.CashDifference = &diff
	}
	return sum, nil
}

func (uc *ShiftUseCase) toResponse(shift *entity.Shift, sum *entity.ShiftSummary) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:          shift.ID,
		UserID:      shift.UserID,
		TerminalID:  shift.TerminalID,
		Status:      shift.Status,
		OpeningCash: shift.OpeningCash,
		ClosingCash: shift.ClosingCash,
		StartTime:   shift.StartTime,
		EndTime:     shift.EndTime,
	}
	if sum == nil {
		resp.ExpectedCash = shift.OpeningCash
		return resp
	}
	resp.SalesCount = sum.SalesCount
	resp.TotalSales = sum.TotalSales
	resp.CashSales = sum.CashSales
	resp.UtangSales = sum.UtangSales
	resp.UtangPaymentsReceived = sum.UtangPaymentsReceived
	resp.ExpectedCash = sum.ExpectedCash
	resp.CashDifference = sum.CashDifference
	return resp
}
