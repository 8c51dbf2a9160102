package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/reports"
)

// ReportHandler expone los reportes de rentabilidad e inventario.
type ReportHandler struct {
	uc *reports.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func parsePeriod(c *fiber.Ctx) (dto.PeriodRequest, error) {
	var in dto.PeriodRequest
	err := c.QueryParser(&in)
	return in, err
}

// Profit godoc
// @Summary      Reporte de rentabilidad
// @Description  Un período desconocido o un rango personalizado inválido se interpreta como hoy.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        period      query  string  false  "today | week | month | this_month | last_month | this_year | last_year | custom"
// @Param        start_date  query  string  false  "Inicio (YYYY-MM-DD), con period=custom"
// @Param        end_date    query  string  false  "Fin (YYYY-MM-DD), con period=custom"
// @Param        group_by    query  string  false  "none | medicine | category"
// @Success      200  {object}  dto.ProfitReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/profit [get]
func (h *ReportHandler) Profit(c *fiber.Ctx) error {
	in, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.ProfitReport(c.UserContext(), in, c.Query("group_by"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeadStock godoc
// @Summary      Stock inmovilizado
// @Description  Medicamentos con stock y sin ventas en los últimos N días.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Días sin ventas (por defecto el valor configurado)"
// @Success      200  {object}  dto.DeadStockResponse
// @Router       /api/reports/dead-stock [get]
func (h *ReportHandler) DeadStock(c *fiber.Ctx) error {
	out, err := h.uc.DeadStock(c.UserContext(), c.QueryInt("days", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarginAlerts godoc
// @Summary      Ventas por debajo del costo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        period      query  string  false  "today | week | month | this_month | last_month | this_year | last_year | custom"
// @Param        start_date  query  string  false  "Inicio (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Fin (YYYY-MM-DD)"
// @Success      200  {object}  dto.MarginAlertsResponse
// @Router       /api/reports/margin-alerts [get]
func (h *ReportHandler) MarginAlerts(c *fiber.Ctx) error {
	in, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.MarginAlerts(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Sales godoc
// @Summary      Ventas por día
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        period      query  string  false  "today | week | month | this_month | last_month | this_year | last_year | custom"
// @Param        start_date  query  string  false  "Inicio (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Fin (YYYY-MM-DD)"
// @Success      200  {object}  dto.SalesReportResponse
// @Router       /api/reports/sales [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	in, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.SalesReport(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Expiry godoc
// @Summary      Lotes vencidos y por vencer
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ExpiryReportResponse
// @Router       /api/reports/expiry [get]
func (h *ReportHandler) Expiry(c *fiber.Ctx) error {
	out, err := h.uc.ExpiryReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Estado de stock por medicamento
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockReportResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.StockReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
