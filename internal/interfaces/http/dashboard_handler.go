package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tindahan/pos-api/internal/application/usecase"
)

// DashboardHandler handles dashboard stat requests (protected).
type DashboardHandler struct {
	uc *usecase.DashboardUseCase
}

// NewDashboardHandler builds the handler.
func NewDashboardHandler(uc *usecase.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats godoc
// @Summary      Dashboard aggregates
// @Description  Sales totals for today/week/month, stock counters, recent
// @Description  sales and 30-day best sellers.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardStats
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
