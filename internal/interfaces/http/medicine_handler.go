package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/catalog"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

// MedicineHandler maneja las peticiones HTTP de medicamentos (protegido).
type MedicineHandler struct {
	uc *catalog.MedicineUseCase
}

// NewMedicineHandler construye el handler.
func NewMedicineHandler(uc *catalog.MedicineUseCase) *MedicineHandler {
	return &MedicineHandler{uc: uc}
}

// Create godoc
// @Summary      Crear medicamento
// @Tags         medicines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MedicineRequest  true  "Datos del medicamento"
// @Success      201   {object}  dto.MedicineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/medicines [post]
func (h *MedicineHandler) Create(c *fiber.Ctx) error {
	var in dto.MedicineRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener medicamento con sus lotes
// @Tags         medicines
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del medicamento"
// @Success      200  {object}  dto.MedicineResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medicines/{id} [get]
func (h *MedicineHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar medicamento
// @Tags         medicines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del medicamento"
// @Param        body  body  dto.MedicineRequest  true  "Datos del medicamento"
// @Success      200   {object}  dto.MedicineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/medicines/{id} [put]
func (h *MedicineHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.MedicineRequest
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
// @Summary      Desactivar medicamento
// @Description  Baja lógica: el medicamento deja de aparecer en búsquedas y listados.
// @Tags         medicines
// @Security     Bearer
// @Param        id   path  int  true  "ID del medicamento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medicines/{id} [delete]
func (h *MedicineHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Deactivate(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar medicamentos activos
// @Tags         medicines
// @Security     Bearer
// @Produce      json
// @Param        category_id  query  int     false  "Filtrar por categoría"
// @Param        search       query  string  false  "Texto en nombre, genérico o fabricante"
// @Param        stock        query  string  false  "low | out | ok"
// @Success      200  {array}  dto.MedicineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/medicines [get]
func (h *MedicineHandler) List(c *fiber.Ctx) error {
	var in dto.MedicineListRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar medicamentos para el punto de venta
// @Description  Requiere al menos 2 caracteres. Cada resultado trae sus lotes disponibles en orden FEFO.
// @Tags         medicines
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  true   "Texto a buscar"
// @Param        limit  query  int     false  "Máximo de resultados (20 por defecto, 50 máximo)"
// @Success      200  {array}  dto.MedicineResponse
// @Router       /api/medicines/search [get]
func (h *MedicineHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AvailableBatches godoc
// @Summary      Lotes vendibles de un medicamento (FEFO)
// @Tags         medicines
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del medicamento"
// @Success      200  {array}   dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medicines/{id}/batches/available [get]
func (h *MedicineHandler) AvailableBatches(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.AvailableBatches(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
