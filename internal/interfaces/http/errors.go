package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-checkout/internal/application/dto"
	"github.com/jhoicas/pos-checkout/internal/domain"
)

// writeError traduce errores de dominio a respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL", "error interno"
	switch {
	case errors.Is(err, domain.ErrDiscountParse):
		status, code, msg = fiber.StatusUnprocessableEntity, "INVALID_DISCOUNT", domain.ErrDiscountParse.Error()
	case errors.Is(err, domain.ErrPercentageExceedsMax):
		status, code, msg = fiber.StatusUnprocessableEntity, "PERCENTAGE_EXCEEDS_MAX", domain.ErrPercentageExceedsMax.Error()
	case errors.Is(err, domain.ErrFixedExceedsTotal):
		status, code, msg = fiber.StatusUnprocessableEntity, "FIXED_EXCEEDS_TOTAL", domain.ErrFixedExceedsTotal.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, msg = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "sesión no encontrada o expirada"
	case errors.Is(err, domain.ErrCountMismatch):
		status, code, msg = fiber.StatusConflict, "COUNT_MISMATCH", err.Error()
	case errors.Is(err, domain.ErrUnitAlreadySelected):
		status, code, msg = fiber.StatusConflict, "ALREADY_SELECTED", err.Error()
	case errors.Is(err, domain.ErrSelectionFull):
		status, code, msg = fiber.StatusConflict, "SELECTION_FULL", err.Error()
	case errors.Is(err, domain.ErrUnitNotCandidate):
		status, code, msg = fiber.StatusConflict, "NOT_CANDIDATE", err.Error()
	case errors.Is(err, domain.ErrSessionNotReady):
		status, code, msg = fiber.StatusConflict, "SESSION_NOT_READY", err.Error()
	case errors.Is(err, domain.ErrSessionClosed):
		status, code, msg = fiber.StatusConflict, "SESSION_CLOSED", err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, msg = fiber.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrCandidateFetch):
		// El detalle de la causa queda en el log, no se expone.
		status, code, msg = fiber.StatusBadGateway, "FETCH_FAILED", domain.ErrCandidateFetch.Error()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
