package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/reports"
)

// DashboardHandler maneja el endpoint del Dashboard.
type DashboardHandler struct {
	uc *reports.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *reports.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen operativo del día.
// GET /api/dashboard
//
// Respuesta: DashboardResponse (total_medicines, today_sales, today_sale_count,
// low_stock_count, expiring_soon_count, recent_sales[5], low_stock_medicines[5],
// expiring_batches[5]).
// No requiere parámetros; "hoy" se calcula en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
