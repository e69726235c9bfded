// Package pricing contiene el cálculo de descuentos del POS (servicio de dominio puro).
// Toda la aritmética monetaria usa decimal de punto fijo; nunca float64.
package pricing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// Kind tipo de descuento.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// DefaultKind es el tipo con el que se abre la entrada de descuento.
const DefaultKind = KindFixed

var hundred = decimal.NewFromInt(100)

// ParseKind convierte el texto recibido en Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPercentage, KindFixed:
		return k, nil
	}
	return "", fmt.Errorf("%w: tipo de descuento %q", domain.ErrInvalidInput, s)
}

// DiscountSpec descuento ingresado por el usuario. Se construye por cada edición y no se persiste aquí.
type DiscountSpec struct {
	Kind      Kind
	Magnitude decimal.Decimal
}

// IsEmpty indica si el descuento no tiene efecto monetario.
func (s DiscountSpec) IsEmpty() bool {
	return !s.Magnitude.IsPositive()
}

// PricingResult monto descontado y total final; 0 <= DiscountAmount <= total base.
type PricingResult struct {
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
}

// Clear devuelve el descuento vacío (estado inicial de la entrada). Es idempotente.
func Clear() DiscountSpec {
	return DiscountSpec{Kind: DefaultKind, Magnitude: decimal.Zero}
}

// groupSeparators caracteres de agrupación de miles que se descartan al parsear.
var groupSeparators = strings.NewReplacer(",", "", "_", "", " ", "", "\u00a0", "", "\u202f", "")

// ParseValue convierte el texto ingresado ("60,000", "12.5") en decimal positivo.
// Solo acepta dígitos y un punto decimal después de quitar separadores de miles.
func ParseValue(raw string) (decimal.Decimal, error) {
	clean := groupSeparators.Replace(strings.TrimSpace(raw))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: valor vacío", domain.ErrDiscountParse)
	}
	digits, dots := 0, 0
	for _, r := range clean {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return decimal.Zero, fmt.Errorf("%w: %q no es un número", domain.ErrDiscountParse, raw)
		}
	}
	if digits == 0 || dots > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q no es un número", domain.ErrDiscountParse, raw)
	}
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrDiscountParse, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: el valor debe ser mayor que cero", domain.ErrDiscountParse)
	}
	return v, nil
}

// Validate aplica las reglas de negocio: porcentaje <= 100 y monto fijo <= total base.
func Validate(kind Kind, value, baseTotal decimal.Decimal) error {
	if baseTotal.IsNegative() {
		return fmt.Errorf("%w: total base negativo", domain.ErrInvalidInput)
	}
	if !value.IsPositive() {
		return fmt.Errorf("%w: el valor debe ser mayor que cero", domain.ErrDiscountParse)
	}
	switch kind {
	case KindPercentage:
		if value.GreaterThan(hundred) {
			return domain.ErrPercentageExceedsMax
		}
	case KindFixed:
		if value.GreaterThan(baseTotal) {
			return domain.ErrFixedExceedsTotal
		}
	default:
		return fmt.Errorf("%w: tipo de descuento %q", domain.ErrInvalidInput, kind)
	}
	return nil
}

// Calculator calcula descuentos redondeando a la unidad mínima de la moneda.
// Scale = cantidad de decimales de la unidad mínima (0 para TZS, 2 para USD).
type Calculator struct {
	Scale int32
}

// NewCalculator construye el calculador para la escala indicada (negativa se trata como 0).
func NewCalculator(scale int32) Calculator {
	if scale < 0 {
		scale = 0
	}
	return Calculator{Scale: scale}
}

// Compute calcula el descuento de un valor ya validado.
// Porcentaje: base * m / 100 redondeado half-up a Scale. Fijo: el valor exacto.
func (c Calculator) Compute(kind Kind, value, baseTotal decimal.Decimal) PricingResult {
	if baseTotal.IsNegative() {
		baseTotal = decimal.Zero
	}
	var amount decimal.Decimal
	switch kind {
	case KindPercentage:
		amount = baseTotal.Mul(value).DivRound(hundred, c.Scale)
	case KindFixed:
		amount = value
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(baseTotal) {
		amount = baseTotal
	}
	return PricingResult{
		DiscountAmount: amount,
		FinalTotal:     baseTotal.Sub(amount),
	}
}

// Apply calcula el resultado de un descuento; el descuento vacío no resta nada.
func (c Calculator) Apply(d DiscountSpec, baseTotal decimal.Decimal) PricingResult {
	if d.IsEmpty() {
		if baseTotal.IsNegative() {
			baseTotal = decimal.Zero
		}
		return PricingResult{DiscountAmount: decimal.Zero, FinalTotal: baseTotal}
	}
	return c.Compute(d.Kind, d.Magnitude, baseTotal)
}

// Evaluate encadena ParseValue -> Validate -> Compute sobre el texto ingresado.
func (c Calculator) Evaluate(kind Kind, raw string, baseTotal decimal.Decimal) (DiscountSpec, PricingResult, error) {
	value, err := ParseValue(raw)
	if err != nil {
		return DiscountSpec{}, PricingResult{}, err
	}
	if err := Validate(kind, value, baseTotal); err != nil {
		return DiscountSpec{}, PricingResult{}, err
	}
	d := DiscountSpec{Kind: kind, Magnitude: value}
	return d, c.Compute(kind, value, baseTotal), nil
}
