package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

// BatchHandler maneja las peticiones HTTP de lotes (protegido).
type BatchHandler struct {
	uc *catalog.BatchUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *catalog.BatchUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "Datos del lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar lote
// @Description  Corrige vencimiento y precios. stock_quantity es opcional; si viene, corrige el stock y responde 409 si una venta lo modificó entre tanto.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int               true  "ID del lote"
// @Param        body  body  dto.BatchUpdateRequest  true  "Datos del lote"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.BatchUpdateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Retirar lote
// @Tags         batches
// @Security     Bearer
// @Param        id   path  int  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Retire(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
