package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
)

// SaleHandler maneja el punto de venta y el libro de ventas (protegido).
type SaleHandler struct {
	commit *sales.CommitSaleUseCase
	ledger *sales.LedgerUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(commit *sales.CommitSaleUseCase, ledger *sales.LedgerUseCase) *SaleHandler {
	return &SaleHandler{commit: commit, ledger: ledger}
}

// Create godoc
// @Summary      Confirmar venta
// @Description  Descuenta stock de los lotes indicados de forma atómica. Si una línea falla no se guarda nada
// @Description  y la respuesta indica la línea (1-based) y la causa.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Carrito"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	input := sales.CommitSaleInput{
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Lines:         make([]sales.CartLine, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		input.Lines = append(input.Lines, sales.CartLine{
			BatchID:   it.BatchID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	sale, err := h.commit.Commit(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleFromEntity(sale, true))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date      query  string  false  "Día (YYYY-MM-DD)"
// @Param        page      query  int     false  "Página"
// @Param        per_page  query  int     false  "Tamaño de página (máx 100)"
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.ledger.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.ledger.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Profit godoc
// @Summary      Rentabilidad de una venta
// @Description  Las líneas no listadas o de lotes sin costo tienen costo desconocido y no suman al costo total.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleProfitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/profit [get]
func (h *SaleHandler) Profit(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.ledger.Profit(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	pdf, err := h.ledger.Receipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(fmt.Sprintf("venta-%d.pdf", id))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}
