package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/application/dto"
)

// AllocationHandler maneja las sesiones de asignación de unidades serializadas.
type AllocationHandler struct {
	uc *checkout.AllocationUseCase
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(uc *checkout.AllocationUseCase) *AllocationHandler {
	return &AllocationHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir sesión de asignación
// @Description  Consulta las unidades disponibles del producto y abre la sesión. Sin unidades elegibles
// @Description  responde 200 con state=cancelled y reason=empty_eligible_set.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenAllocationRequest  true  "Producto, cantidad requerida y unidades excluidas"
// @Success      201   {object}  dto.AllocationResponse
// @Success      200   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations [post]
func (h *AllocationHandler) Open(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.OpenAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Open(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Reason != "" {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Ver sesión de asignación
// @Description  Con ?search= guarda el filtro y devuelve los candidatos filtrados por serial, IMEI o MAC.
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la sesión"
// @Param        search  query  string  false  "Subcadena de serial, IMEI o MAC"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations/{id} [get]
func (h *AllocationHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	var (
		out *dto.AllocationResponse
		err error
	)
	if c.Context().QueryArgs().Has("search") {
		out, err = h.uc.Search(c.UserContext(), companyID, id, c.Query("search"))
	} else {
		out, err = h.uc.Get(c.UserContext(), companyID, id)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Select godoc
// @Summary      Seleccionar unidad
// @Description  Al alcanzar la cantidad requerida la sesión se completa y la respuesta incluye la asignación.
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la sesión"
// @Param        body  body  dto.SelectUnitRequest  true  "Unidad"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations/{id}/select [post]
func (h *AllocationHandler) Select(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SelectUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Select(c.UserContext(), companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deselect godoc
// @Summary      Quitar unidad de la selección
// @Tags         allocations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la sesión"
// @Param        body  body  dto.SelectUnitRequest  true  "Unidad"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations/{id}/deselect [post]
func (h *AllocationHandler) Deselect(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SelectUnitRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Deselect(c.UserContext(), companyID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar selección
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations/{id}/confirm [post]
func (h *AllocationHandler) Confirm(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Confirm(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar sesión
// @Tags         allocations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.AllocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/checkout/allocations/{id} [delete]
func (h *AllocationHandler) Cancel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Cancel(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
