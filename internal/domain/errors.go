package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del cálculo de descuentos.
var (
	ErrDiscountParse        = errors.New("valor de descuento inválido")
	ErrPercentageExceedsMax = errors.New("el descuento porcentual no puede superar 100%")
	ErrFixedExceedsTotal    = errors.New("el descuento fijo no puede superar el total")
)

// Errores de la sesión de asignación de unidades serializadas.
var (
	ErrCountMismatch       = errors.New("la cantidad seleccionada no coincide con la requerida")
	ErrCandidateFetch      = errors.New("no se pudieron obtener las unidades disponibles")
	ErrUnitAlreadySelected = errors.New("la unidad ya está seleccionada")
	ErrSelectionFull       = errors.New("ya se seleccionó la cantidad requerida")
	ErrUnitNotCandidate    = errors.New("la unidad no es elegible en esta sesión")
	ErrSessionNotReady     = errors.New("la sesión aún está cargando unidades")
	ErrSessionClosed       = errors.New("la sesión ya fue completada o cancelada")
)

// IsDiscountValidation indica si err es una violación de regla de negocio del descuento.
func IsDiscountValidation(err error) bool {
	return errors.Is(err, ErrPercentageExceedsMax) || errors.Is(err, ErrFixedExceedsTotal)
}

// IsSelectionRejected indica si err corresponde a un select rechazado sin cambio de estado.
func IsSelectionRejected(err error) bool {
	return errors.Is(err, ErrUnitAlreadySelected) ||
		errors.Is(err, ErrSelectionFull) ||
		errors.Is(err, ErrUnitNotCandidate)
}
