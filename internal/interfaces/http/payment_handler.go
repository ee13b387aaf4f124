package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tindahan/pos-api/internal/application/credit"
	"github.com/tindahan/pos-api/internal/application/dto"
	"github.com/tindahan/pos-api/pkg/validator"
)

// PaymentHandler handles utang payment requests (protected).
type PaymentHandler struct {
	uc *credit.ApplyPaymentUseCase
}

// NewPaymentHandler builds the handler.
func NewPaymentHandler(uc *credit.ApplyPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Create godoc
// @Summary      Apply a credit payment
// @Description  Linked payments settle one sale; unlinked payments are
// @Description  allocated across the customer's open utang sales oldest-first.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyPaymentRequest  true  "Payment data"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.ApplyPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if fields := validator.ValidateStruct(in); len(fields) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "validation failed", Fields: fields})
	}
	out, err := h.uc.ApplyPayment(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByCustomer godoc
// @Summary      List a customer's payments
// @Tags         payments
// @Security     Bearer
// @Produce      json
// @Param        customerId  path   string  true   "Customer ID"
// @Param        limit       query  int     false  "Limit"   default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/customers/{customerId}/payments [get]
func (h *PaymentHandler) ListByCustomer(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	if customerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "customerId is required"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "invalid query"})
	}
	out, err := h.uc.ListByCustomer(c.Context(), customerID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
