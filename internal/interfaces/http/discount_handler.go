package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/application/dto"
)

// DiscountHandler maneja el descuento a nivel de venta del checkout.
type DiscountHandler struct {
	uc *checkout.DiscountUseCase
}

// NewDiscountHandler construye el handler.
func NewDiscountHandler(uc *checkout.DiscountUseCase) *DiscountHandler {
	return &DiscountHandler{uc: uc}
}

// Preview godoc
// @Summary      Previsualizar descuento
// @Description  Calcula monto descontado y total final mientras el usuario escribe. No aplica nada.
// @Tags         discounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DiscountRequest  true  "Tipo, valor tecleado y total base"
// @Success      200   {object}  dto.DiscountPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/checkout/discounts/preview [post]
func (h *DiscountHandler) Preview(c *fiber.Ctx) error {
	var in dto.DiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Preview(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aplicar descuento
// @Description  Valida el descuento y devuelve la aplicación que el checkout debe conservar.
// @Tags         discounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DiscountRequest  true  "Tipo, valor tecleado y total base"
// @Success      200   {object}  dto.DiscountApplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/checkout/discounts/apply [post]
func (h *DiscountHandler) Apply(c *fiber.Ctx) error {
	var in dto.DiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Apply(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Quitar descuento
// @Tags         discounts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DiscountClearedResponse
// @Router       /api/checkout/discounts/clear [post]
func (h *DiscountHandler) Clear(c *fiber.Ctx) error {
	return c.JSON(h.uc.Clear())
}
